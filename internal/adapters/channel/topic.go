package channel

import (
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"context"
	"fmt"
)

// Topic binds a channel name to one payload type and schema version.
type Topic[T any] struct {
	Name    string
	Version int
}

// NewTopic declares a typed channel.
func NewTopic[T any](name string, version int) Topic[T] {
	return Topic[T]{Name: name, Version: version}
}

var (
	PingTopic        = NewTopic[domain.Ping](domain.ChannelPing, domain.PingVersion)
	PongTopic        = NewTopic[domain.Pong](domain.ChannelPong, domain.PongVersion)
	PreferencesTopic = NewTopic[domain.Preferences](domain.ChannelPreferencesChanged, domain.PreferencesVersion)
)

// Send publishes v on the topic, stamping the version when the sender can.
func (t Topic[T]) Send(sender ports.Sender, v T) error {
	if vs, ok := sender.(ports.VersionedSender); ok {
		return vs.SendVersion(t.Name, t.Version, v)
	}
	return sender.Send(t.Name, v)
}

// SendTo delivers v to one window when sender can address windows, and
// falls back to Send otherwise.
func (t Topic[T]) SendTo(sender ports.Sender, window string, v T) error {
	if ws, ok := sender.(ports.WindowSender); ok {
		return ws.SendTo(window, t.Name, t.Version, v)
	}
	return t.Send(sender, v)
}

// SendExcept delivers v to every window but skip when sender can address
// windows, and falls back to Send otherwise.
func (t Topic[T]) SendExcept(sender ports.Sender, skip string, v T) error {
	if ws, ok := sender.(ports.WindowSender); ok {
		return ws.SendExcept(skip, t.Name, t.Version, v)
	}
	return t.Send(sender, v)
}

// On registers a typed handler. Version 0 marks an unversioned sender and
// is accepted; any other version must match. A null payload decodes to the
// zero value of T.
func (t Topic[T]) On(ch ports.Channel, handler func(ctx context.Context, payload T) error) ports.Unsubscribe {
	return ch.On(t.Name, func(ctx context.Context, msg domain.Message) error {
		if msg.Version != 0 && msg.Version != t.Version {
			return fmt.Errorf("%w: %q got v%d, want v%d", domain.ErrVersionMismatch, t.Name, msg.Version, t.Version)
		}

		var payload T
		if err := msg.Decode(&payload); err != nil {
			return err
		}
		return handler(ctx, payload)
	})
}
