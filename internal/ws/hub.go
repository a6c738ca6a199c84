package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/service"
)

const (
	presenceTimeout = 5 * time.Second
	userLockStripes = 64
)

// Presence is the set of state transitions driven by socket events.
type Presence interface {
	Online(ctx context.Context, userID int64) error
	CallStart(ctx context.Context, userID int64) error
	CallEnd(ctx context.Context, userID int64) error
	LiveStart(ctx context.Context, userID int64, channel, token string) (*domain.LiveUser, error)
	Offline(ctx context.Context, userID int64) error
}

// Hub tracks one connection per user. A newer connection replaces the older one
// and the user only goes offline when their current connection drops.
type Hub struct {
	presence Presence
	mu       sync.RWMutex
	clients  map[int64]*Client

	// serializes a user's connect and disconnect transitions
	userLocks [userLockStripes]sync.Mutex
}

func NewHub(presence Presence) *Hub {
	return &Hub{
		presence: presence,
		clients:  make(map[int64]*Client),
	}
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), presenceTimeout)
}

func (h *Hub) userLock(userID int64) *sync.Mutex {
	return &h.userLocks[uint64(userID)%userLockStripes]
}

// Register makes c the user's current connection and marks them online.
func (h *Hub) Register(c *Client) error {
	lock := h.userLock(c.UserID)
	lock.Lock()

	h.mu.Lock()
	old := h.clients[c.UserID]
	h.clients[c.UserID] = c
	h.mu.Unlock()

	ctx, cancel := opContext()
	err := h.presence.Online(ctx, c.UserID)
	cancel()
	if err != nil {
		h.mu.Lock()
		if old != nil {
			h.clients[c.UserID] = old
		} else {
			delete(h.clients, c.UserID)
		}
		h.mu.Unlock()
		lock.Unlock()
		return err
	}
	lock.Unlock()

	if old != nil {
		logger.Info("ws: connection replaced", "user_id", c.UserID)
		old.close()
	}
	return nil
}

// Unregister runs the offline transition if c is still the user's current connection.
func (h *Hub) Unregister(c *Client) {
	lock := h.userLock(c.UserID)
	lock.Lock()
	defer lock.Unlock()

	h.mu.Lock()
	current, ok := h.clients[c.UserID]
	if !ok || current != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.UserID)
	h.mu.Unlock()

	ctx, cancel := opContext()
	defer cancel()
	if err := h.presence.Offline(ctx, c.UserID); err != nil {
		logger.Error("ws: offline transition failed", "user_id", c.UserID, "error", err)
	}
}

// IsConnected reports whether the user has a live connection on this node.
func (h *Hub) IsConnected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connection. Each one still runs its offline transition.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) handle(c *Client, env Envelope) []byte {
	ctx, cancel := opContext()
	defer cancel()

	var err error
	switch env.Type {
	case MsgPing:
		return encode(MsgPong, nil)
	case MsgCallStart:
		err = h.presence.CallStart(ctx, c.UserID)
	case MsgCallEnd:
		err = h.presence.CallEnd(ctx, c.UserID)
	case MsgLiveStart:
		var p LiveStartPayload
		if len(env.Payload) == 0 || json.Unmarshal(env.Payload, &p) != nil {
			return encode(MsgError, ErrorPayload{Message: "invalid payload"})
		}
		_, err = h.presence.LiveStart(ctx, c.UserID, p.Channel, p.Token)
	default:
		return encode(MsgError, ErrorPayload{Message: "unknown message type"})
	}
	if err != nil {
		logger.Warn("ws: presence update failed", "user_id", c.UserID, "type", env.Type, "error", err)
		return encode(MsgError, ErrorPayload{Message: clientMessage(err)})
	}
	return encode(MsgAck, AckPayload{For: env.Type})
}

func clientMessage(err error) string {
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrConflict) {
		return err.Error()
	}
	return "internal server error"
}
