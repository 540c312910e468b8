package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

// IPCConfig configures the host/renderer wire link.
type IPCConfig struct {
	ListenAddr    string
	HostURL       string
	SessionKey    string // hex; empty disables frame sealing
	MaxFrameBytes int
}

// SettingsConfig selects where persisted UI settings live.
type SettingsConfig struct {
	Backend string
	Path    string
}

// PostgresConfig is only read when the settings backend is postgres.
type PostgresConfig struct {
	URL string
}

// UIConfig holds renderer-side timings.
type UIConfig struct {
	PingReset time.Duration
}

// Config holds all configuration for the application.
type Config struct {
	AppEnv   string
	IPC      IPCConfig
	Settings SettingsConfig
	Postgres PostgresConfig
	UI       UIConfig
}

// bindings maps viper keys to the environment variables that feed them.
var bindings = map[string]string{
	"app.env":             "APP_ENV",
	"ipc.listen_addr":     "IPC_LISTEN_ADDR",
	"ipc.host_url":        "IPC_HOST_URL",
	"ipc.session_key":     "IPC_SESSION_KEY",
	"ipc.max_frame_bytes": "IPC_MAX_FRAME_BYTES",
	"settings.backend":    "SETTINGS_BACKEND",
	"settings.path":       "SETTINGS_PATH",
	"postgres.url":        "DATABASE_URL",
	"ui.ping_reset":       "UI_PING_RESET",
}

// Load loads configuration from the environment, after applying a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	// 1. Load .env into the process environment
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		// No .env: rely on OS-set env vars.
	}

	// 2. Bind viper keys to env var names
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	// 3. Defaults
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("ipc.listen_addr", "127.0.0.1:7420")
	viper.SetDefault("ipc.host_url", "ws://127.0.0.1:7420/ipc")
	viper.SetDefault("ipc.max_frame_bytes", 1<<20)
	viper.SetDefault("settings.backend", BackendPebble)
	viper.SetDefault("settings.path", "./data/settings")
	viper.SetDefault("ui.ping_reset", 2*time.Second)

	// 4. Read values
	cfg := Config{
		AppEnv: viper.GetString("app.env"),
		IPC: IPCConfig{
			ListenAddr:    viper.GetString("ipc.listen_addr"),
			HostURL:       viper.GetString("ipc.host_url"),
			SessionKey:    viper.GetString("ipc.session_key"),
			MaxFrameBytes: viper.GetInt("ipc.max_frame_bytes"),
		},
		Settings: SettingsConfig{
			Backend: viper.GetString("settings.backend"),
			Path:    viper.GetString("settings.path"),
		},
		Postgres: PostgresConfig{
			URL: viper.GetString("postgres.url"),
		},
		UI: UIConfig{
			PingReset: viper.GetDuration("ui.ping_reset"),
		},
	}

	// 5. Validation
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if key := c.IPC.SessionKey; key != "" && len(key) != 32 && len(key) != 64 {
		return fmt.Errorf("IPC_SESSION_KEY must be a 32 or 64-character hex string, but got %d chars", len(key))
	}

	if c.IPC.MaxFrameBytes <= 0 {
		return fmt.Errorf("IPC_MAX_FRAME_BYTES must be positive, got %d", c.IPC.MaxFrameBytes)
	}

	switch c.Settings.Backend {
	case BackendPebble:
		if c.Settings.Path == "" {
			return errors.New("SETTINGS_PATH must be set for the pebble backend")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return errors.New("DATABASE_URL is required when SETTINGS_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown SETTINGS_BACKEND %q (want %q or %q)", c.Settings.Backend, BackendPebble, BackendPostgres)
	}

	if c.UI.PingReset <= 0 {
		return fmt.Errorf("UI_PING_RESET must be positive, got %s", c.UI.PingReset)
	}
	return nil
}

// IsDev reports whether human-readable logging should be used.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}
