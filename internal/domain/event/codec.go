package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned when decoding an event whose type is not part
// of the catalog.
var ErrUnknownType = errors.New("unknown event type")

// envelope is the wire form of an event: {"type": "...", "data": {...}}.
type envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Marshal encodes an event into its wire envelope.
func Marshal(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, errors.New("nil event")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.Type(), err)
	}

	return json.Marshal(envelope{Type: ev.Type(), Data: data})
}

// Unmarshal decodes a wire envelope into its typed event.
func Unmarshal(b []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	return Decode(env.Type, env.Data)
}

// Decode builds a typed event from a type tag and its raw payload.
func Decode(t Type, data []byte) (Event, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}

	switch t {
	case TypeActionCreated:
		var ev ActionCreated
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return ev, nil

	case TypeActionUpdated:
		var ev ActionUpdated
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return ev, nil

	case TypeActionDeleted:
		var ev ActionDeleted
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return ev, nil

	case TypeForceLogout:
		var ev ForceLogout
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
}
