package pebble

import (
	"DeskShell/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble/v2"
	"github.com/rs/zerolog"
)

const keyPrefix = "settings/"

// SettingsRepository stores UI settings in a local pebble database, the
// desktop equivalent of browser localStorage.
type SettingsRepository struct {
	db        *pebble.DB
	log       zerolog.Logger
	closeOnce sync.Once
}

var _ ports.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository opens (or creates) the database under path.
func NewSettingsRepository(path string, baseLogger *zerolog.Logger) (*SettingsRepository, error) {
	log := baseLogger.With().Str("component", "pebble_settings").Logger()

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to open settings database")
		return nil, fmt.Errorf("open settings database: %w", err)
	}

	log.Info().Str("path", path).Msg("Settings database opened")
	return &SettingsRepository{db: db, log: log}, nil
}

// Get reads one setting. A missing key is not an error.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	value, closer, err := r.db.Get([]byte(keyPrefix + key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("Failed to read setting")
		return "", false, err
	}
	// value is only valid until closer is closed.
	out := string(value)
	if err := closer.Close(); err != nil {
		return "", false, err
	}
	return out, true, nil
}

// Set writes one setting durably.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.db.Set([]byte(keyPrefix+key), []byte(value), pebble.Sync); err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("Failed to write setting")
		return err
	}
	r.log.Debug().Str("key", key).Msg("Setting saved")
	return nil
}

// Close releases the database. Safe to call more than once.
func (r *SettingsRepository) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.log.Info().Msg("Closing settings database")
		err = r.db.Close()
	})
	return err
}
