// ABOUTME: Tests for opening stores from storage configuration
// ABOUTME: Covers the memory and sqlite drivers and unknown driver rejection

package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fitcheck-studio/internal/config"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_Memory(t *testing.T) {
	stores, err := Open(context.Background(), config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &MockStore{}, stores.Assets)
	assert.Same(t, stores.Assets, stores.Library)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.db")
	stores, err := Open(context.Background(), config.StorageConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)

	require.NoError(t, stores.Assets.SaveAsset(context.Background(), "a", "v"))
	require.NoError(t, stores.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "redis"})
	assert.ErrorContains(t, err, "unknown storage driver")
}
