package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_Upsert_Roundtrip(t *testing.T) {
	requireDB(t)

	nopLogger := zerolog.Nop()
	repo := NewSettingsRepository(testDB, &nopLogger)
	ctx := context.Background()
	key := "test-language-" + uuid.NewString()
	defer cleanupSetting(t, key)

	_, found, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, key, "lo"))
	require.NoError(t, repo.Set(ctx, key, "en"))

	value, found, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "en", value)
}
