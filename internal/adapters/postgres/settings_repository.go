package postgres

import (
	"DeskShell/internal/core/ports"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const createSettingsTable = `
	CREATE TABLE IF NOT EXISTS ui_settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type settingsRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.SettingsRepository = (*settingsRepository)(nil) // Ensure compliance

// NewSettingsRepository creates a repository over the ui_settings table.
func NewSettingsRepository(db *DB, baseLogger *zerolog.Logger) ports.SettingsRepository {
	return &settingsRepository{
		db:  db,
		log: baseLogger.With().Str("component", "settings_repo").Logger(),
	}
}

// Get returns the stored value, or found=false when the key was never written.
func (r *settingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.pool.QueryRow(ctx, `SELECT value FROM ui_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("Failed to read setting")
		return "", false, err
	}
	return value, true, nil
}

// Set upserts the value.
func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO ui_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := r.db.pool.Exec(ctx, query, key, value); err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("Failed to write setting")
		return err
	}
	return nil
}
