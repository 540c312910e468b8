// Package wire carries channel messages between the host process and its
// renderer windows over a local websocket.
//
// Each websocket message holds one JSON frame. When a session key is
// configured the frame is sealed with AES-GCM and sent as a binary message
// instead of text.
package wire

import (
	"DeskShell/internal/core/domain"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrInvalidFrame = errors.New("invalid frame")

var frameValidator = validator.New(validator.WithRequiredStructEnabled())

// Frame is the wire form of a domain.Message.
type Frame struct {
	ID      uuid.UUID       `json:"id"               validate:"required"`
	Channel string          `json:"channel"          validate:"required,max=128,printascii"`
	Version int             `json:"version"          validate:"gte=0"`
	Origin  string          `json:"origin,omitempty" validate:"max=64"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload"          validate:"required"`
	SentAt  time.Time       `json:"sent_at"`
}

func frameFromMessage(msg domain.Message) Frame {
	return Frame{
		ID:      msg.ID,
		Channel: msg.Channel,
		Version: msg.Version,
		Origin:  msg.Origin,
		Seq:     msg.Seq,
		Payload: msg.Payload,
		SentAt:  msg.SentAt,
	}
}

func (f Frame) message() domain.Message {
	return domain.Message{
		ID:      f.ID,
		Channel: f.Channel,
		Version: f.Version,
		Origin:  f.Origin,
		Seq:     f.Seq,
		Payload: f.Payload,
		SentAt:  f.SentAt,
	}
}

// decodeFrame parses and validates one inbound frame.
func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if err := frameValidator.Struct(f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if !json.Valid(f.Payload) {
		return Frame{}, fmt.Errorf("%w: payload is not JSON", ErrInvalidFrame)
	}
	return f, nil
}
