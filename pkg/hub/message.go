// Package hub fans job events out to websocket subscribers using a single
// goroutine that owns the client set.
package hub

import "encoding/json"

// Message is a JSON text payload queued for every client.
type Message struct {
	Data []byte
}

// Event is the envelope for JSON broadcasts.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewJSONMessage creates a JSON message from pre-encoded bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}

// NewEventMessage encodes an event envelope.
func NewEventMessage(eventType string, payload any) (Message, error) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(data), nil
}
