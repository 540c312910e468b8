package ports

import "context"

// SettingsRepository is the local key-value store behind persisted UI settings.
type SettingsRepository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	Set(ctx context.Context, key, value string) error
}
