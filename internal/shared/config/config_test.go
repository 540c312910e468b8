package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "127.0.0.1:7420", cfg.IPC.ListenAddr)
	assert.Equal(t, "ws://127.0.0.1:7420/ipc", cfg.IPC.HostURL)
	assert.Equal(t, 1<<20, cfg.IPC.MaxFrameBytes)
	assert.Empty(t, cfg.IPC.SessionKey)
	assert.Equal(t, BackendPebble, cfg.Settings.Backend)
	assert.Equal(t, 2*time.Second, cfg.UI.PingReset)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "prod")
	t.Setenv("IPC_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("SETTINGS_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://shell@localhost/shell")
	t.Setenv("UI_PING_RESET", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "127.0.0.1:9999", cfg.IPC.ListenAddr)
	assert.Equal(t, BackendPostgres, cfg.Settings.Backend)
	assert.Equal(t, "postgres://shell@localhost/shell", cfg.Postgres.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.UI.PingReset)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "short session key",
			env:  map[string]string{"IPC_SESSION_KEY": "abcd"},
			want: "IPC_SESSION_KEY",
		},
		{
			name: "postgres without url",
			env:  map[string]string{"SETTINGS_BACKEND": "postgres", "DATABASE_URL": ""},
			want: "DATABASE_URL",
		},
		{
			name: "unknown backend",
			env:  map[string]string{"SETTINGS_BACKEND": "sqlite"},
			want: "unknown SETTINGS_BACKEND",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.ErrorContains(t, err, tc.want)
		})
	}
}
