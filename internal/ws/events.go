package ws

import "encoding/json"

// Inbound event types
const (
	EventLobbyJoin  = "lobby:join"
	EventGameStart  = "game:start"
	EventGameAction = "game:action"
)

// Outbound event types
const (
	EventAck         = "ack"
	EventStateUpdate = "state:update"
	EventAppError    = "app:error"
)

// CodeRateLimited is the ack code for messages dropped by the rate limiter.
const CodeRateLimited = "RATE_LIMITED"

// Envelope is an inbound client message. Payload is decoded by the handler
// of Type.
type Envelope struct {
	Type    string          `json:"type"`
	AckID   string          `json:"ackId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is an outbound server message.
type Message struct {
	Type    string `json:"type"`
	AckID   string `json:"ackId,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Ack answers one inbound envelope.
type Ack struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
	Result any    `json:"result,omitempty"`
}

// AppError is the payload of EventAppError.
type AppError struct {
	Message string `json:"message"`
}
