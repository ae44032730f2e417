// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers schema creation, asset and descriptor persistence, and library records

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created in nested directory")
}

func TestNewSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.SaveAsset(ctx, "asset_render_1_1", "data:image/png;base64,AAAA"))
	require.NoError(t, first.Close())

	// Schema creation and migrations are idempotent
	second, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	payload, err := second.GetAsset(ctx, "asset_render_1_1")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", payload)
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveAsset(ctx, "a", "payload"))

	keys, err := store.ListAssetKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestSQLiteStore_AssetContract(t *testing.T) {
	runAssetStoreContract(t, func(t *testing.T) AssetStore { return setupTestStore(t) })
}

func TestSQLiteStore_LibraryContract(t *testing.T) {
	runLibraryStoreContract(t, func(t *testing.T) LibraryStore { return setupTestStore(t) })
}

func TestSQLiteStore_DescriptorTimestampPrecision(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 30, 45, 123456789, time.UTC)
	require.NoError(t, store.SaveDescriptor(ctx, &Descriptor{
		ID: "asset_render_1_1", Kind: "render", MimeType: "image/png", Size: 3, CreatedAt: created,
	}))

	got, err := store.GetDescriptor(ctx, "asset_render_1_1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestSQLiteStore_CharacterSettingsRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	settings := scene.Defaults()
	settings.Style = "noir-35mm"
	settings.ShowMirror = true

	require.NoError(t, store.SaveCharacter(ctx, &Character{
		ID:        "char-1",
		Name:      "Ada",
		ImageRef:  "asset_render_1_1",
		Gender:    scene.Feminine,
		Settings:  settings,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}))

	got, err := store.GetCharacter(ctx, "char-1")
	require.NoError(t, err)
	assert.Equal(t, settings, got.Settings)
	assert.Equal(t, scene.Feminine, got.Gender)
}

func TestSQLiteStore_WardrobeItemUpdateKeepsOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := &wardrobe.Item{ID: "a", Name: "A", ImageRef: "x", Category: wardrobe.Shoes}
	b := &wardrobe.Item{ID: "b", Name: "B", ImageRef: "y", Category: wardrobe.Bottoms}
	require.NoError(t, store.SaveWardrobeItem(ctx, a))
	require.NoError(t, store.SaveWardrobeItem(ctx, b))

	a.Name = "A2"
	require.NoError(t, store.SaveWardrobeItem(ctx, a))

	items, err := store.ListWardrobeItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "A2", items[0].Name)
}
