package models

import "encoding/json"

// Direction of an OCPP frame relative to the backend.
type Direction string

const (
	DirectionIncoming Direction = "Incoming"
	DirectionOutgoing Direction = "Outgoing"
)

// LogEntry is one OCPP message exchanged with a charger. Payload is passed
// through untouched.
type LogEntry struct {
	ID          int             `json:"id"`
	Timestamp   Timestamp       `json:"timestamp"`
	Direction   Direction       `json:"direction"`
	MessageType string          `json:"message_type"`
	Action      string          `json:"action"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}
