package ports

import (
	"DeskShell/internal/core/domain"
	"context"
)

// RequestHandler is a host-side "plugin" bound to one request channel.
type RequestHandler interface {
	// Channel returns the request channel name (e.g., "ping")
	Channel() string
	// Handle processes one message from a renderer window.
	Handle(ctx context.Context, msg domain.Message) error
}
