package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message pairs an event with the scope it is addressed to. It is the unit
// handed to the router and carried across the fan-out backplane.
type Message struct {
	Event Event
	Scope Scope
}

type wireMessage struct {
	Scope Scope           `json:"scope"`
	Event json.RawMessage `json:"event"`
}

// EncodeMessage serializes a message for the backplane.
func EncodeMessage(msg *Message) ([]byte, error) {
	if msg == nil || msg.Event == nil {
		return nil, errors.New("nil message")
	}

	ev, err := Marshal(msg.Event)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wireMessage{Scope: msg.Scope, Event: ev})
}

// DecodeMessage parses a message received from the backplane.
func DecodeMessage(b []byte) (*Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(b, &wire); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	ev, err := Unmarshal(wire.Event)
	if err != nil {
		return nil, err
	}

	return &Message{Event: ev, Scope: wire.Scope}, nil
}
