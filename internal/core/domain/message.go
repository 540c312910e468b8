package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Direction tells which side of the process boundary a channel flows to.
type Direction string

const (
	DirectionRequest Direction = "request" // renderer -> host
	DirectionEvent   Direction = "event"   // host -> renderer
)

// Reverse is the direction replies to d travel in.
func (d Direction) Reverse() Direction {
	if d == DirectionRequest {
		return DirectionEvent
	}
	return DirectionRequest
}

// Message is the unit carried by a channel.
// Payload is the JSON encoding of whatever the sender passed in.
type Message struct {
	ID      uuid.UUID
	Channel string
	Version int
	Origin  string
	Seq     uint64 // per-origin send counter
	Payload json.RawMessage
	SentAt  time.Time
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode %q payload: %w", m.Channel, err)
	}
	return nil
}

// EncodePayload turns a payload into its wire form. Values that are already
// raw JSON pass through once they are checked to be well formed.
func EncodePayload(channel string, payload any) (json.RawMessage, error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}

	if raw, ok := payload.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, &SerializationError{Channel: channel, Err: errors.New("invalid raw JSON")}
		}
		return append(json.RawMessage(nil), raw...), nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, &SerializationError{Channel: channel, Err: err}
	}
	return b, nil
}
