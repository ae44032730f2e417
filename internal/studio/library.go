// ABOUTME: Library operations: garment uploads, catalog import, saved characters and outfits
// ABOUTME: Also runs registry collection under the session busy flag

package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/generation"
	"github.com/2389/fitcheck-studio/internal/registry"
	"github.com/2389/fitcheck-studio/internal/store"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// Upload is a user-supplied garment image.
type Upload struct {
	Name        string
	Category    string
	SubCategory string
	Payload     string // data URL
}

// UploadGarment registers the image as a garment asset and saves a custom
// wardrobe item that references it.
func (s *Session) UploadGarment(ctx context.Context, up Upload) (*wardrobe.Item, error) {
	category, ok := wardrobe.ParseCategory(up.Category)
	if !ok {
		return nil, faults.Validationf("upload garment", "category is required")
	}
	if _, err := generation.ParseDataURL(up.Payload); err != nil {
		return nil, faults.Validation("upload garment", err)
	}
	if !wardrobe.ValidSubCategory(category, up.SubCategory) {
		return nil, faults.Validationf("upload garment", "sub-category %q does not belong to %s", up.SubCategory, category)
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	id, err := s.reg.Register(ctx, up.Payload, registry.KindGarment)
	if err != nil {
		return nil, err
	}

	item := wardrobe.NewCustomItem(up.Name, category, up.SubCategory, id)
	if err := s.lib.SaveWardrobeItem(ctx, &item); err != nil {
		// The orphaned garment asset is reclaimed by the next Optimize.
		return nil, faults.Storage("upload garment", err)
	}

	s.logger.Info("garment uploaded", "item_id", item.ID, "asset_id", id, "category", category)
	return &item, nil
}

// ImportCatalog validates and saves items into the library. Existing ids are overwritten.
func (s *Session) ImportCatalog(ctx context.Context, items []wardrobe.Item) (int, error) {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return 0, faults.Validation("import catalog", fmt.Errorf("items[%d]: %w", i, err))
		}
	}
	for i := range items {
		if err := s.lib.SaveWardrobeItem(ctx, &items[i]); err != nil {
			return i, faults.Storage("import catalog", err)
		}
	}
	s.logger.Info("catalog imported", "items", len(items))
	return len(items), nil
}

// Wardrobe lists the library's garments.
func (s *Session) Wardrobe(ctx context.Context) ([]*wardrobe.Item, error) {
	items, err := s.lib.ListWardrobeItems(ctx)
	if err != nil {
		return nil, faults.Storage("list wardrobe", err)
	}
	return items, nil
}

// Garment looks up one library garment.
func (s *Session) Garment(ctx context.Context, id string) (*wardrobe.Item, error) {
	item, err := s.lib.GetWardrobeItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, faults.Resolution("get garment", fmt.Errorf("garment %s: %w", id, err))
	}
	if err != nil {
		return nil, faults.Storage("get garment", err)
	}
	return item, nil
}

// SaveCharacter stores the current base model under name.
func (s *Session) SaveCharacter(ctx context.Context, name string) (*store.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, faults.Validationf("save character", "name is required")
	}

	s.mu.RLock()
	if s.base == "" {
		s.mu.RUnlock()
		return nil, faults.Validationf("save character", "no base model")
	}
	c := &store.Character{
		ID:        uuid.New().String(),
		Name:      name,
		ImageRef:  s.base,
		Gender:    s.gender,
		Settings:  s.settings,
		CreatedAt: s.now(),
	}
	s.mu.RUnlock()

	if err := s.lib.SaveCharacter(ctx, c); err != nil {
		return nil, faults.Storage("save character", err)
	}
	s.logger.Info("character saved", "character_id", c.ID, "name", name)
	return c, nil
}

// SaveOutfit stores the current render and applied garments under name.
func (s *Session) SaveOutfit(ctx context.Context, name string) (*store.Outfit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, faults.Validationf("save outfit", "name is required")
	}

	s.mu.RLock()
	if s.history == nil || s.layers.Len() == 0 {
		s.mu.RUnlock()
		return nil, faults.Validationf("save outfit", "no garments applied")
	}
	o := &store.Outfit{
		ID:         uuid.New().String(),
		Name:       name,
		PreviewRef: s.history.Current(),
		GarmentIDs: s.layers.IDs(),
		CreatedAt:  s.now(),
	}
	s.mu.RUnlock()

	if err := s.lib.SaveOutfit(ctx, o); err != nil {
		return nil, faults.Storage("save outfit", err)
	}
	s.logger.Info("outfit saved", "outfit_id", o.ID, "name", name, "garments", len(o.GarmentIDs))
	return o, nil
}

// Characters lists saved characters, newest first.
func (s *Session) Characters(ctx context.Context) ([]*store.Character, error) {
	chars, err := s.lib.ListCharacters(ctx)
	if err != nil {
		return nil, faults.Storage("list characters", err)
	}
	return chars, nil
}

// Outfits lists saved outfits, newest first.
func (s *Session) Outfits(ctx context.Context) ([]*store.Outfit, error) {
	outfits, err := s.lib.ListOutfits(ctx)
	if err != nil {
		return nil, faults.Storage("list outfits", err)
	}
	return outfits, nil
}

// Optimize collects assets that neither the session, the library nor any
// recorded live session references.
func (s *Session) Optimize(ctx context.Context, opts ...registry.OptimizeOption) (registry.OptimizeReport, error) {
	if err := s.acquire(); err != nil {
		return registry.OptimizeReport{}, err
	}
	defer s.release()
	return s.reg.Optimize(ctx, opts...)
}
