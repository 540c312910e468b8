package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyChannel        = errors.New("channel name must not be empty")
	ErrChannelClosed       = errors.New("channel is closed")
	ErrVersionMismatch     = errors.New("message schema version mismatch")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnsupportedTheme    = errors.New("unsupported theme")
)

// SerializationError is returned synchronously by Send when a payload
// cannot be represented on the wire.
type SerializationError struct {
	Channel string
	Err     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("payload for channel %q is not serializable: %v", e.Channel, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
