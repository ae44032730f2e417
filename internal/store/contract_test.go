// ABOUTME: Shared behavioral tests run against every AssetStore and LibraryStore implementation
// ABOUTME: Keeps SQLite, S3 and mock stores consistent on not-found, overwrite and collection

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

func runAssetStoreContract(t *testing.T, newStore func(t *testing.T) AssetStore) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAsset(ctx, "asset_render_1_1", "data:image/png;base64,AAAA"))

		got, err := s.GetAsset(ctx, "asset_render_1_1")
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,AAAA", got)
	})

	t.Run("missing key is not found, not a storage error", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetAsset(ctx, "asset_render_0_0")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, errors.Is(err, faults.ErrStorage))
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAsset(ctx, "k", "v1"))
		require.NoError(t, s.SaveAsset(ctx, "k", "v2"))

		got, err := s.GetAsset(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAsset(ctx, "k", "v"))
		require.NoError(t, s.DeleteAsset(ctx, "k"))
		require.NoError(t, s.DeleteAsset(ctx, "k"))

		_, err := s.GetAsset(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list keys sorted", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"c", "a", "b"} {
			require.NoError(t, s.SaveAsset(ctx, k, "v"))
		}
		keys, err := s.ListAssetKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})

	t.Run("clear obsolete keeps active set", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, s.SaveAsset(ctx, k, "payload-"+k))
			require.NoError(t, s.SaveDescriptor(ctx, &Descriptor{ID: k, Kind: "render", MimeType: "image/png", Size: 1, CreatedAt: time.Now().UTC()}))
		}

		removed, err := s.ClearObsolete(ctx, map[string]struct{}{"a": {}, "c": {}})
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		keys, err := s.ListAssetKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, keys)

		_, err = s.GetAsset(ctx, "b")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetDescriptor(ctx, "b")
		assert.ErrorIs(t, err, ErrNotFound)

		got, err := s.GetAsset(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "payload-a", got)
	})

	t.Run("clear obsolete with empty active set removes everything", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAsset(ctx, "a", "v"))
		removed, err := s.ClearObsolete(ctx, map[string]struct{}{})
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
	})

	t.Run("clear obsolete removes descriptors without an asset", func(t *testing.T) {
		s := newStore(t)
		now := time.Now().UTC()
		require.NoError(t, s.SaveAsset(ctx, "kept", "v"))
		require.NoError(t, s.SaveDescriptor(ctx, &Descriptor{ID: "kept", Kind: "render", MimeType: "image/png", CreatedAt: now}))
		require.NoError(t, s.SaveDescriptor(ctx, &Descriptor{ID: "orphan", Kind: "render", MimeType: "image/png", CreatedAt: now}))

		removed, err := s.ClearObsolete(ctx, map[string]struct{}{"kept": {}})
		require.NoError(t, err)
		assert.Equal(t, 0, removed)

		_, err = s.GetDescriptor(ctx, "orphan")
		assert.ErrorIs(t, err, ErrNotFound)
		all, err := s.ListDescriptors(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "kept", all[0].ID)
	})

	t.Run("descriptors", func(t *testing.T) {
		s := newStore(t)
		created := time.Now().UTC().Truncate(time.Second)
		d := &Descriptor{ID: "asset_garment_1_1", Kind: "garment", MimeType: "image/jpeg", Size: 42, Digest: "abc", CreatedAt: created}
		require.NoError(t, s.SaveDescriptor(ctx, d))
		require.NoError(t, s.SaveDescriptor(ctx, &Descriptor{ID: "asset_render_1_0", Kind: "render", MimeType: "image/png", Size: 1, CreatedAt: created}))

		got, err := s.GetDescriptor(ctx, "asset_garment_1_1")
		require.NoError(t, err)
		assert.Equal(t, d.Kind, got.Kind)
		assert.Equal(t, d.MimeType, got.MimeType)
		assert.Equal(t, d.Size, got.Size)
		assert.Equal(t, d.Digest, got.Digest)
		assert.True(t, got.CreatedAt.Equal(created))

		all, err := s.ListDescriptors(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "asset_garment_1_1", all[0].ID)

		require.NoError(t, s.DeleteDescriptor(ctx, "asset_garment_1_1"))
		_, err = s.GetDescriptor(ctx, "asset_garment_1_1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func runLibraryStoreContract(t *testing.T, newStore func(t *testing.T) LibraryStore) {
	ctx := context.Background()

	t.Run("wardrobe items", func(t *testing.T) {
		s := newStore(t)
		item := wardrobe.NewCustomItem("Ring", wardrobe.Accessories, "Jewelry", "asset_garment_1_1")
		require.NoError(t, s.SaveWardrobeItem(ctx, &item))
		for _, seed := range wardrobe.DefaultCatalog() {
			require.NoError(t, s.SaveWardrobeItem(ctx, &seed))
		}

		got, err := s.GetWardrobeItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item, *got)

		items, err := s.ListWardrobeItems(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, item.ID, items[0].ID)

		require.NoError(t, s.DeleteWardrobeItem(ctx, item.ID))
		_, err = s.GetWardrobeItem(ctx, item.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("characters newest first", func(t *testing.T) {
		s := newStore(t)
		older := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
		newer := older.Add(time.Minute)

		require.NoError(t, s.SaveCharacter(ctx, &Character{ID: "c1", Name: "Old", ImageRef: "r1", Gender: scene.Neutral, Settings: scene.Defaults(), CreatedAt: older}))
		require.NoError(t, s.SaveCharacter(ctx, &Character{ID: "c2", Name: "New", ImageRef: "r2", Gender: scene.Masculine, Settings: scene.Defaults(), CreatedAt: newer}))

		list, err := s.ListCharacters(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "c2", list[0].ID)

		_, err = s.GetCharacter(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.DeleteCharacter(ctx, "c1"))
		list, err = s.ListCharacters(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("outfits", func(t *testing.T) {
		s := newStore(t)
		o := &Outfit{ID: "o1", Name: "Casual", PreviewRef: "asset_render_1_2", GarmentIDs: []string{"a", "b"}, CreatedAt: time.Now().UTC().Truncate(time.Second)}
		require.NoError(t, s.SaveOutfit(ctx, o))

		list, err := s.ListOutfits(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, []string{"a", "b"}, list[0].GarmentIDs)
		assert.Equal(t, "asset_render_1_2", list[0].PreviewRef)

		require.NoError(t, s.DeleteOutfit(ctx, "o1"))
		list, err = s.ListOutfits(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("sessions", func(t *testing.T) {
		s := newStore(t)
		updated := time.Now().UTC()
		require.NoError(t, s.SaveSession(ctx, &SessionRecord{ID: "s2", AssetIDs: []string{"asset_render_1_0"}, UpdatedAt: updated}))
		require.NoError(t, s.SaveSession(ctx, &SessionRecord{ID: "s1", AssetIDs: []string{"asset_base_1_0"}, UpdatedAt: updated}))
		require.NoError(t, s.SaveSession(ctx, &SessionRecord{ID: "s1", AssetIDs: []string{"asset_base_1_0", "asset_render_2_0"}, UpdatedAt: updated}))

		list, err := s.ListSessions(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "s1", list[0].ID)
		assert.Equal(t, []string{"asset_base_1_0", "asset_render_2_0"}, list[0].AssetIDs)
		assert.True(t, list[0].UpdatedAt.Equal(updated))

		require.NoError(t, s.DeleteSession(ctx, "s1"))
		require.NoError(t, s.DeleteSession(ctx, "missing"))
		list, err = s.ListSessions(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "s2", list[0].ID)
	})
}
