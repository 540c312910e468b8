package main

import (
	"DeskShell/internal/adapters/channel"
	"DeskShell/internal/adapters/security"
	"DeskShell/internal/adapters/wire"
	"DeskShell/internal/core/domain"
	"DeskShell/internal/host"
	_ "DeskShell/internal/host/handlers"
	"DeskShell/internal/shared/config"
	"DeskShell/internal/shared/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	baseLogger := logger.New(cfg.IsDev(), "host")
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("listen_addr", cfg.IPC.ListenAddr).
		Bool("sealed", cfg.IPC.SessionKey != "").
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire options
	opts := wire.Options{MaxFrameBytes: cfg.IPC.MaxFrameBytes}
	if cfg.IPC.SessionKey != "" {
		sealer, err := security.NewAESServiceFromHex(cfg.IPC.SessionKey, &baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to initialize frame sealing")
		}
		opts.Sealer = sealer
	}

	// 4. Request channel (renderer -> host) and the event side (host -> renderers)
	requests := channel.NewInMemoryChannel(domain.DirectionRequest, wire.HostOrigin, &baseLogger)
	server := wire.NewServer(requests, opts, &baseLogger)

	// 5. Register Handlers
	host.RegisterAllHandlers(cfg, requests, server, &baseLogger)

	mux := http.NewServeMux()
	mux.Handle("/ipc", server.Handler())
	httpServer := &http.Server{
		Addr:              cfg.IPC.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 6. Run until signalled
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return requests.Run(gctx)
	})
	g.Go(func() error {
		baseLogger.Info().Str("addr", cfg.IPC.ListenAddr).Msg("Host listening for windows")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		baseLogger.Info().Msg("Shutting down")
		server.Close()
		requests.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		baseLogger.Fatal().Err(err).Msg("Host stopped with error")
	}
	baseLogger.Info().Msg("Host stopped")
}
