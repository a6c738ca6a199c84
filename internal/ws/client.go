package ws

import (
	"encoding/json"
	"sync"
	"time"

	"streamhub/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
)

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte

	Hub       *Hub
	Done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		Hub:    hub,
		Done:   make(chan struct{}),
	}
}

// Run registers the client and blocks until the connection is gone.
func (c *Client) Run() {
	if err := c.Hub.Register(c); err != nil {
		logger.Warn("ws: register failed", "user_id", c.UserID, "error", err)
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.Conn.WriteMessage(websocket.TextMessage, encode(MsgError, ErrorPayload{Message: clientMessage(err)}))
		_ = c.Conn.Close()
		return
	}

	go c.writePump()
	c.queue(encode(MsgReady, nil))

	c.readPump()
}

// queue drops the message when the client is not keeping up.
func (c *Client) queue(msg []byte) {
	select {
	case <-c.Done:
	case c.Send <- msg:
	default:
		logger.Warn("ws: send buffer full, dropping message", "user_id", c.UserID)
	}
}

//read
func (c *Client) readPump() {
	defer func() {
		c.close()
		c.Hub.Unregister(c)
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws: read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.queue(encode(MsgError, ErrorPayload{Message: "invalid message"}))
			continue
		}
		c.queue(c.Hub.handle(c, env))
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-c.Done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws: write error", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close stops the pumps. The read side notices when the write side closes the conn.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.Done)
		// unblock a reader waiting on a silent peer
		if c.Conn != nil {
			_ = c.Conn.SetReadDeadline(time.Now())
		}
	})
}
