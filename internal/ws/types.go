package ws

const (
	// client - server
	MsgCallStart = "call_start"
	MsgCallEnd   = "call_end"
	MsgLiveStart = "live_start"
	MsgPing      = "ping"

	// server - client
	MsgReady = "ready"
	MsgAck   = "ack"
	MsgPong  = "pong"
	MsgError = "error"
)
