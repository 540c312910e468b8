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
	host.Register(NewPreferencesRelayHandler)
}

// PreferencesRelayHandler rebroadcasts a window's new preferences to every
// other window, so a language or theme switch applies application-wide.
// The sender already has them and never gets its own change back.
type PreferencesRelayHandler struct {
	log    zerolog.Logger
	events ports.Sender
}

func NewPreferencesRelayHandler(cfg *config.Config, events ports.Sender, baseLogger *zerolog.Logger) ports.RequestHandler {
	return &PreferencesRelayHandler{
		log:    baseLogger.With().Str("component", "preferences_relay").Logger(),
		events: events,
	}
}

func (h *PreferencesRelayHandler) Channel() string {
	return domain.ChannelPreferencesChanged
}

func (h *PreferencesRelayHandler) Handle(ctx context.Context, msg domain.Message) error {
	if msg.Version > domain.PreferencesVersion {
		return fmt.Errorf("%w: preferences v%d", domain.ErrVersionMismatch, msg.Version)
	}

	var prefs domain.Preferences
	if err := msg.Decode(&prefs); err != nil {
		return err
	}
	// Windows are untrusted; only relay values every window can apply.
	if err := domain.ValidateLanguage(prefs.Language); err != nil {
		return err
	}
	if err := domain.ValidateTheme(prefs.Theme); err != nil {
		return err
	}

	h.log.Info().
		Str("window_id", msg.Origin).
		Str("language", prefs.Language).
		Str("theme", string(prefs.Theme)).
		Msg("Relaying preferences")

	if h.events == nil {
		return nil
	}
	return channel.PreferencesTopic.SendExcept(h.events, msg.Origin, prefs)
}
