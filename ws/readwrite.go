package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/deskrelay/deskrelay/ws/outgoing"
)

// Typed is the wire envelope for JSON messages in both directions.
type Typed struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ToTypedOutgoing wraps an outgoing message into its envelope.
func ToTypedOutgoing(message outgoing.Message) (Typed, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return Typed{}, err
	}
	return Typed{
		Type:    message.Type(),
		Payload: payload,
	}, nil
}

// ReadTypedIncoming decodes one envelope from r and returns the event it
// names. Unknown types and malformed payloads are errors; the connection
// stays open, the message is dropped by the caller.
func ReadTypedIncoming(r io.Reader) (Event, error) {
	typed := Typed{}
	if err := json.NewDecoder(r).Decode(&typed); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	create, ok := provider[typed.Type]
	if !ok {
		return nil, errors.New("cannot handle " + typed.Type)
	}

	event := create()
	if len(typed.Payload) > 0 {
		if err := json.Unmarshal(typed.Payload, event); err != nil {
			return nil, fmt.Errorf("malformed payload: %w", err)
		}
	}
	return event, nil
}

var provider = map[string]func() Event{}

func register(t string, incoming func() Event) {
	provider[t] = incoming
}
