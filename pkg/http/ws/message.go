package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeAsk  = "ask"
	TypePing = "ping"

	// Server -> Client
	TypeAnswer = "answer"
	TypeError  = "error"
	TypePong   = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed envelope.
func NewMessage(msgType, requestID string, payload any) (Message, error) {
	msg := Message{Type: msgType, RequestID: requestID}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// Client Messages (incoming)

type AskPayload struct {
	Question    string `json:"question"`
	Personality string `json:"personality,omitempty"`
}

// Server Messages (outgoing)

type AnswerPayload struct {
	Answer      string `json:"answer"`
	Personality string `json:"personality"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
