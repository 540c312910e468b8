package handlers

import (
	"DeskShell/internal/adapters/channel"
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"DeskShell/internal/host"
	"DeskShell/internal/shared/config"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

func init() {
	host.Register(NewPingHandler)
}

// PingHandler answers the renderer's connectivity check: it logs "pong"
// and, when an event sender is wired, replies with a pong event addressed
// to the window that asked.
type PingHandler struct {
	log    zerolog.Logger
	events ports.Sender
}

func NewPingHandler(cfg *config.Config, events ports.Sender, baseLogger *zerolog.Logger) ports.RequestHandler {
	return &PingHandler{
		log:    baseLogger.With().Str("component", "ping_handler").Logger(),
		events: events,
	}
}

func (h *PingHandler) Channel() string {
	return domain.ChannelPing
}

func (h *PingHandler) Handle(ctx context.Context, msg domain.Message) error {
	if msg.Version > domain.PingVersion {
		return fmt.Errorf("%w: ping v%d", domain.ErrVersionMismatch, msg.Version)
	}

	var ping domain.Ping
	if err := msg.Decode(&ping); err != nil {
		return err
	}
	if ping.ID == "" {
		ping.ID = msg.ID.String()
	}

	h.log.Info().Str("window_id", msg.Origin).Uint64("seq", msg.Seq).Msg("pong")

	if h.events == nil {
		return nil
	}
	return channel.PongTopic.SendTo(h.events, msg.Origin, domain.Pong{ReplyTo: ping.ID})
}
