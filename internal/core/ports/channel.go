package ports

import (
	"DeskShell/internal/core/domain"
	"context"
)

// Handler receives every message sent on the channel it was registered for.
// A returned error is logged by the channel; it never reaches the sender.
type Handler func(ctx context.Context, msg domain.Message) error

// Unsubscribe revokes one registration. Calling it more than once is a no-op.
type Unsubscribe func()

// Sender is the fire-and-forget half of a channel.
type Sender interface {
	// Send encodes payload and queues it for delivery. It fails only when
	// the channel name is empty or the payload cannot be serialized.
	Send(channel string, payload any) error
}

// VersionedSender stamps a schema version on the message. Typed topics use
// it when the sender supports it.
type VersionedSender interface {
	Sender
	SendVersion(channel string, version int, payload any) error
}

// WindowSender addresses host events at individual renderer windows, named
// by the origin the host stamped on their requests.
type WindowSender interface {
	SendTo(window, channel string, version int, payload any) error
	SendExcept(skip, channel string, version int, payload any) error
}

// Channel is one direction of the process boundary: renderer requests
// into the host, or host events into a renderer.
type Channel interface {
	Sender

	// On registers a handler. Handlers on the same channel run in
	// registration order for every message.
	On(channel string, handler Handler) Unsubscribe
}

// Inbox accepts messages that were already encoded by a remote sender.
type Inbox interface {
	Deliver(msg domain.Message) error
}
