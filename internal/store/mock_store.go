// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject storage failures per operation

package store

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// ErrInjected is the cause carried by failures injected with FailNext.
var ErrInjected = errors.New("injected failure")

// MockStore is an in-memory AssetStore and LibraryStore for testing.
type MockStore struct {
	mu          sync.RWMutex
	assets      map[string]string      // keyed by asset ID
	descriptors map[string]*Descriptor // keyed by asset ID
	items       map[string]*wardrobe.Item
	itemOrder   []string
	characters  map[string]*Character
	outfits     map[string]*Outfit
	sessions    map[string]*SessionRecord
	failures    map[string]int // operation name -> pending injected failures
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		assets:      make(map[string]string),
		descriptors: make(map[string]*Descriptor),
		items:       make(map[string]*wardrobe.Item),
		characters:  make(map[string]*Character),
		outfits:     make(map[string]*Outfit),
		sessions:    make(map[string]*SessionRecord),
		failures:    make(map[string]int),
	}
}

// FailNext makes the next call to the named method (e.g. "SaveAsset") fail
// with a storage error wrapping ErrInjected.
func (m *MockStore) FailNext(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op]++
}

// fail consumes a pending injected failure for op. Must be called with mu held.
func (m *MockStore) fail(op string) error {
	if m.failures[op] == 0 {
		return nil
	}
	m.failures[op]--
	return faults.Storage(op, ErrInjected)
}

// SaveAsset stores a payload.
func (m *MockStore) SaveAsset(ctx context.Context, id, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("SaveAsset"); err != nil {
		return err
	}
	m.assets[id] = payload
	return nil
}

// GetAsset retrieves a payload by ID.
func (m *MockStore) GetAsset(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("GetAsset"); err != nil {
		return "", err
	}
	payload, ok := m.assets[id]
	if !ok {
		return "", ErrNotFound
	}
	return payload, nil
}

// DeleteAsset removes a payload and its descriptor.
func (m *MockStore) DeleteAsset(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("DeleteAsset"); err != nil {
		return err
	}
	delete(m.assets, id)
	delete(m.descriptors, id)
	return nil
}

// ListAssetKeys returns all asset ids sorted.
func (m *MockStore) ListAssetKeys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("ListAssetKeys"); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m.assets))
	for id := range m.assets {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearObsolete removes every asset and descriptor not in active.
func (m *MockStore) ClearObsolete(ctx context.Context, active map[string]struct{}) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("ClearObsolete"); err != nil {
		return 0, err
	}
	removed := 0
	for id := range m.assets {
		if _, keep := active[id]; keep {
			continue
		}
		delete(m.assets, id)
		removed++
	}
	for id := range m.descriptors {
		if _, keep := active[id]; !keep {
			delete(m.descriptors, id)
		}
	}
	return removed, nil
}

// SaveDescriptor stores a copy of d.
func (m *MockStore) SaveDescriptor(ctx context.Context, d *Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("SaveDescriptor"); err != nil {
		return err
	}
	c := *d
	m.descriptors[c.ID] = &c
	return nil
}

// GetDescriptor returns a copy of the descriptor for id.
func (m *MockStore) GetDescriptor(ctx context.Context, id string) (*Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.descriptors[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *d
	return &c, nil
}

// ListDescriptors returns copies of all descriptors ordered by id.
func (m *MockStore) ListDescriptors(ctx context.Context) ([]*Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Descriptor, 0, len(m.descriptors))
	for _, d := range m.descriptors {
		c := *d
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteDescriptor removes the descriptor for id.
func (m *MockStore) DeleteDescriptor(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("DeleteDescriptor"); err != nil {
		return err
	}
	delete(m.descriptors, id)
	return nil
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}

// SaveWardrobeItem stores a copy of item.
func (m *MockStore) SaveWardrobeItem(ctx context.Context, item *wardrobe.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("SaveWardrobeItem"); err != nil {
		return err
	}
	c := *item
	if _, exists := m.items[c.ID]; !exists {
		m.itemOrder = append(m.itemOrder, c.ID)
	}
	m.items[c.ID] = &c
	return nil
}

// GetWardrobeItem returns a copy of the item with id.
func (m *MockStore) GetWardrobeItem(ctx context.Context, id string) (*wardrobe.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *item
	return &c, nil
}

// ListWardrobeItems returns copies of all items in insertion order.
func (m *MockStore) ListWardrobeItems(ctx context.Context) ([]*wardrobe.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*wardrobe.Item, 0, len(m.itemOrder))
	for _, id := range m.itemOrder {
		c := *m.items[id]
		out = append(out, &c)
	}
	return out, nil
}

// DeleteWardrobeItem removes an item.
func (m *MockStore) DeleteWardrobeItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil
	}
	delete(m.items, id)
	m.itemOrder = slices.DeleteFunc(m.itemOrder, func(s string) bool { return s == id })
	return nil
}

// SaveCharacter stores a copy of c.
func (m *MockStore) SaveCharacter(ctx context.Context, c *Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("SaveCharacter"); err != nil {
		return err
	}
	cp := *c
	m.characters[cp.ID] = &cp
	return nil
}

// GetCharacter returns a copy of the character with id.
func (m *MockStore) GetCharacter(ctx context.Context, id string) (*Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.characters[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListCharacters returns copies of all characters, newest first.
func (m *MockStore) ListCharacters(ctx context.Context) ([]*Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Character, 0, len(m.characters))
	for _, c := range m.characters {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteCharacter removes a character.
func (m *MockStore) DeleteCharacter(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.characters, id)
	return nil
}

// SaveOutfit stores a copy of o.
func (m *MockStore) SaveOutfit(ctx context.Context, o *Outfit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("SaveOutfit"); err != nil {
		return err
	}
	cp := *o
	cp.GarmentIDs = slices.Clone(o.GarmentIDs)
	m.outfits[cp.ID] = &cp
	return nil
}

// ListOutfits returns copies of all outfits, newest first.
func (m *MockStore) ListOutfits(ctx context.Context) ([]*Outfit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Outfit, 0, len(m.outfits))
	for _, o := range m.outfits {
		cp := *o
		cp.GarmentIDs = slices.Clone(o.GarmentIDs)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteOutfit removes an outfit.
func (m *MockStore) DeleteOutfit(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.outfits, id)
	return nil
}

// SaveSession stores a copy of rec.
func (m *MockStore) SaveSession(ctx context.Context, rec *SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("SaveSession"); err != nil {
		return err
	}
	cp := *rec
	cp.AssetIDs = slices.Clone(rec.AssetIDs)
	m.sessions[cp.ID] = &cp
	return nil
}

// ListSessions returns copies of all session records ordered by id.
func (m *MockStore) ListSessions(ctx context.Context) ([]*SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("ListSessions"); err != nil {
		return nil, err
	}
	out := make([]*SessionRecord, 0, len(m.sessions))
	for _, rec := range m.sessions {
		cp := *rec
		cp.AssetIDs = slices.Clone(rec.AssetIDs)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteSession removes a session record.
func (m *MockStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("DeleteSession"); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

// Compile-time interface checks
var (
	_ AssetStore   = (*MockStore)(nil)
	_ LibraryStore = (*MockStore)(nil)
)
