package ws

import "encoding/json"

// Envelope wraps every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client → server
type LiveStartPayload struct {
	Channel string `json:"channel"`
	Token   string `json:"token"`
}

// server → client
type AckPayload struct {
	For string `json:"for"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encode(msgType string, payload any) []byte {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			env.Payload = raw
		}
	}
	b, _ := json.Marshal(env)
	return b
}
