package main

import (
	"DeskShell/internal/adapters/channel"
	"DeskShell/internal/adapters/pebble"
	"DeskShell/internal/adapters/postgres"
	"DeskShell/internal/adapters/security"
	"DeskShell/internal/adapters/store"
	"DeskShell/internal/adapters/wire"
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"DeskShell/internal/renderer"
	"DeskShell/internal/shared/config"
	"DeskShell/internal/shared/logger"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// A headless renderer window: it drives the same state the UI would.
func main() {
	language := flag.String("language", "", "switch the UI language (en, lo)")
	toggleTheme := flag.Bool("toggle-theme", false, "flip between light and dark")
	add := flag.Int("add", 5, "amount added to the counter after the increments")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	baseLogger := logger.New(cfg.IsDev(), "renderer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Settings store
	settings, closeSettings, err := openSettings(ctx, cfg, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to open settings store")
	}
	defer closeSettings()

	// 4. Connect to the host
	opts := wire.Options{MaxFrameBytes: cfg.IPC.MaxFrameBytes}
	if cfg.IPC.SessionKey != "" {
		sealer, err := security.NewAESServiceFromHex(cfg.IPC.SessionKey, &baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to initialize frame sealing")
		}
		opts.Sealer = sealer
	}

	windowID := uuid.NewString()
	events := channel.NewInMemoryChannel(domain.DirectionEvent, windowID, &baseLogger)
	link, err := wire.Dial(ctx, cfg.IPC.HostURL, windowID, events, opts, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to connect to host")
	}
	go func() {
		if err := link.Run(ctx); err != nil {
			baseLogger.Error().Err(err).Msg("Link to host failed")
		}
		stop()
	}()
	go events.Run(ctx)

	// 5. UI state
	loaded, err := renderer.LoadPreferences(ctx, settings, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to load preferences")
	}
	prefs := renderer.NewPreferences(store.New(loaded), settings, &baseLogger)
	defer prefs.Close()
	prefs.Publish(link)
	prefs.Follow(events)

	counter := renderer.NewCounter(store.New(domain.CounterState{}))
	counter.Subscribe(func(s domain.CounterState) {
		baseLogger.Info().Int("count", s.Count).Msg("Counter changed")
	})

	pinger := renderer.NewPinger(store.New(domain.PingIdle), link, cfg.UI.PingReset, &baseLogger)
	defer pinger.Stop()
	pinger.Listen(events)
	pinger.Subscribe(func(s domain.PingStatus) {
		baseLogger.Info().Str("status", string(s)).Msg("Ping status")
	})

	// 6. Drive it
	if *language != "" {
		if err := prefs.SetLanguage(*language); err != nil {
			baseLogger.Error().Err(err).Msg("Language not changed")
		}
	}
	if *toggleTheme {
		prefs.ToggleTheme()
	}

	counter.Increment()
	counter.Increment()
	counter.Decrement()
	counter.IncrementBy(*add)

	if err := pinger.Ping(); err != nil {
		baseLogger.Error().Err(err).Msg("Ping failed")
	}

	current := prefs.Current()
	baseLogger.Info().
		Str("language", current.Language).
		Str("theme", string(current.Theme)).
		Int("count", counter.Count()).
		Msg("Window ready")

	// Stay up long enough to see the pong and the indicator reset.
	select {
	case <-ctx.Done():
	case <-time.After(cfg.UI.PingReset + time.Second):
	}
	link.Close()
}

func openSettings(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (ports.SettingsRepository, func(), error) {
	switch cfg.Settings.Backend {
	case config.BackendPostgres:
		db, err := postgres.NewDB(ctx, cfg.Postgres.URL, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewSettingsRepository(db, log), db.Close, nil
	default:
		repo, err := pebble.NewSettingsRepository(cfg.Settings.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	}
}
