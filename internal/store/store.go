// ABOUTME: Store interfaces and records for asset payloads, descriptors and the wardrobe library
// ABOUTME: Defines AssetStore, LibraryStore, Descriptor, Character and Outfit

package store

import (
	"context"
	"errors"
	"time"

	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Descriptor is the metadata partition entry written alongside every asset.
type Descriptor struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}

// Character is a saved base model that can be reloaded into a session.
type Character struct {
	ID        string
	Name      string
	ImageRef  string
	Gender    scene.Gender
	Settings  scene.Settings
	CreatedAt time.Time
}

// Outfit is a saved set of garments with a preview render.
type Outfit struct {
	ID         string
	Name       string
	PreviewRef string
	GarmentIDs []string
	CreatedAt  time.Time
}

// SessionRecord lists the assets a live studio session still references, so
// collection run from another process keeps them.
type SessionRecord struct {
	ID        string
	AssetIDs  []string
	UpdatedAt time.Time
}

// AssetStore persists generated payloads keyed by asset id.
// A missing key is reported as ErrNotFound; I/O failures carry faults.ErrStorage.
type AssetStore interface {
	// Assets partition
	SaveAsset(ctx context.Context, id, payload string) error
	GetAsset(ctx context.Context, id string) (string, error)
	DeleteAsset(ctx context.Context, id string) error
	ListAssetKeys(ctx context.Context) ([]string, error)

	// ClearObsolete deletes every asset (and its descriptor) whose id is not
	// in active, returning how many assets were removed.
	ClearObsolete(ctx context.Context, active map[string]struct{}) (int, error)

	// Metadata partition
	SaveDescriptor(ctx context.Context, d *Descriptor) error
	GetDescriptor(ctx context.Context, id string) (*Descriptor, error)
	ListDescriptors(ctx context.Context) ([]*Descriptor, error)
	DeleteDescriptor(ctx context.Context, id string) error

	Close() error
}

// LibraryStore persists the wardrobe catalog and saved characters and outfits.
type LibraryStore interface {
	// Wardrobe
	SaveWardrobeItem(ctx context.Context, item *wardrobe.Item) error
	GetWardrobeItem(ctx context.Context, id string) (*wardrobe.Item, error)
	ListWardrobeItems(ctx context.Context) ([]*wardrobe.Item, error)
	DeleteWardrobeItem(ctx context.Context, id string) error

	// Characters
	SaveCharacter(ctx context.Context, c *Character) error
	GetCharacter(ctx context.Context, id string) (*Character, error)
	ListCharacters(ctx context.Context) ([]*Character, error)
	DeleteCharacter(ctx context.Context, id string) error

	// Outfits
	SaveOutfit(ctx context.Context, o *Outfit) error
	ListOutfits(ctx context.Context) ([]*Outfit, error)
	DeleteOutfit(ctx context.Context, id string) error

	// Live sessions
	SaveSession(ctx context.Context, rec *SessionRecord) error
	ListSessions(ctx context.Context) ([]*SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
}
