// ABOUTME: SQLite implementation of AssetStore and LibraryStore using modernc.org/sqlite
// ABOUTME: Creates the schema on open and applies idempotent column migrations

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// SQLiteStore implements AssetStore and LibraryStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS assets (
			id         TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS asset_descriptors (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			mime_type  TEXT NOT NULL,
			size       INTEGER NOT NULL,
			digest     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_asset_descriptors_kind ON asset_descriptors(kind);

		CREATE TABLE IF NOT EXISTS wardrobe_items (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			image_ref    TEXT NOT NULL,
			category     TEXT NOT NULL,
			sub_category TEXT NOT NULL DEFAULT '',
			brand        TEXT NOT NULL DEFAULT '',
			custom       INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS characters (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			image_ref     TEXT NOT NULL,
			gender        TEXT NOT NULL,
			settings_json TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS outfits (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			preview_ref      TEXT NOT NULL,
			garment_ids_json TEXT NOT NULL,
			created_at       TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id             TEXT PRIMARY KEY,
			asset_ids_json TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// SQLite doesn't support ADD COLUMN IF NOT EXISTS, so we check first
	migrations := []struct {
		table  string
		column string
		apply  string
	}{
		{
			table:  "asset_descriptors",
			column: "digest",
			apply:  `ALTER TABLE asset_descriptors ADD COLUMN digest TEXT NOT NULL DEFAULT ''`,
		},
		{
			table:  "wardrobe_items",
			column: "custom",
			apply:  `ALTER TABLE wardrobe_items ADD COLUMN custom INTEGER NOT NULL DEFAULT 0`,
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(`SELECT 1 FROM pragma_table_info(?) WHERE name = ?`, m.table, m.column).Scan(&exists)
		if err == nil {
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to %s: %w", m.column, m.table, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", m.table)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// SaveAsset writes or overwrites a payload.
func (s *SQLiteStore) SaveAsset(ctx context.Context, id, payload string) error {
	query := `INSERT OR REPLACE INTO assets (id, payload, created_at) VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, id, payload, now()); err != nil {
		return faults.Storage("save asset", fmt.Errorf("inserting asset %s: %w", id, err))
	}

	s.logger.Debug("saved asset", "asset_id", id, "size", len(payload))
	return nil
}

// GetAsset returns the payload stored under id.
// Returns ErrNotFound if the asset doesn't exist.
func (s *SQLiteStore) GetAsset(ctx context.Context, id string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM assets WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", faults.Storage("get asset", fmt.Errorf("querying asset %s: %w", id, err))
	}
	return payload, nil
}

// DeleteAsset removes an asset and its descriptor. Missing ids are ignored.
func (s *SQLiteStore) DeleteAsset(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Storage("delete asset", fmt.Errorf("beginning transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
		return faults.Storage("delete asset", fmt.Errorf("deleting asset %s: %w", id, err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_descriptors WHERE id = ?`, id); err != nil {
		return faults.Storage("delete asset", fmt.Errorf("deleting descriptor %s: %w", id, err))
	}
	if err := tx.Commit(); err != nil {
		return faults.Storage("delete asset", fmt.Errorf("committing: %w", err))
	}
	return nil
}

// ListAssetKeys returns every asset id in ascending order.
func (s *SQLiteStore) ListAssetKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM assets ORDER BY id`)
	if err != nil {
		return nil, faults.Storage("list assets", fmt.Errorf("querying asset keys: %w", err))
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, faults.Storage("list assets", fmt.Errorf("scanning asset key: %w", err))
		}
		keys = append(keys, id)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("list assets", fmt.Errorf("iterating asset keys: %w", err))
	}
	return keys, nil
}

// ClearObsolete deletes, in one transaction, every asset and every descriptor
// not in active.
func (s *SQLiteStore) ClearObsolete(ctx context.Context, active map[string]struct{}) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, faults.Storage("clear obsolete", fmt.Errorf("beginning transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM assets`)
	if err != nil {
		return 0, faults.Storage("clear obsolete", fmt.Errorf("querying asset keys: %w", err))
	}
	var obsolete []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, faults.Storage("clear obsolete", fmt.Errorf("scanning asset key: %w", err))
		}
		if _, keep := active[id]; !keep {
			obsolete = append(obsolete, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, faults.Storage("clear obsolete", fmt.Errorf("iterating asset keys: %w", err))
	}

	for _, id := range obsolete {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
			return 0, faults.Storage("clear obsolete", fmt.Errorf("deleting asset %s: %w", id, err))
		}
	}

	// Descriptors are swept separately so entries left behind by a partial
	// write go too.
	drows, err := tx.QueryContext(ctx, `SELECT id FROM asset_descriptors`)
	if err != nil {
		return 0, faults.Storage("clear obsolete", fmt.Errorf("querying descriptors: %w", err))
	}
	var stale []string
	for drows.Next() {
		var id string
		if err := drows.Scan(&id); err != nil {
			drows.Close()
			return 0, faults.Storage("clear obsolete", fmt.Errorf("scanning descriptor id: %w", err))
		}
		if _, keep := active[id]; !keep {
			stale = append(stale, id)
		}
	}
	drows.Close()
	if err := drows.Err(); err != nil {
		return 0, faults.Storage("clear obsolete", fmt.Errorf("iterating descriptors: %w", err))
	}
	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM asset_descriptors WHERE id = ?`, id); err != nil {
			return 0, faults.Storage("clear obsolete", fmt.Errorf("deleting descriptor %s: %w", id, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, faults.Storage("clear obsolete", fmt.Errorf("committing: %w", err))
	}

	s.logger.Info("cleared obsolete assets", "removed", len(obsolete), "descriptors", len(stale), "active", len(active))
	return len(obsolete), nil
}

// SaveDescriptor writes or overwrites the descriptor for d.ID.
func (s *SQLiteStore) SaveDescriptor(ctx context.Context, d *Descriptor) error {
	query := `
		INSERT OR REPLACE INTO asset_descriptors (id, kind, mime_type, size, digest, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		d.ID,
		d.Kind,
		d.MimeType,
		d.Size,
		d.Digest,
		d.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return faults.Storage("save descriptor", fmt.Errorf("inserting descriptor %s: %w", d.ID, err))
	}
	return nil
}

// GetDescriptor returns the descriptor for id.
// Returns ErrNotFound if none exists.
func (s *SQLiteStore) GetDescriptor(ctx context.Context, id string) (*Descriptor, error) {
	query := `SELECT id, kind, mime_type, size, digest, created_at FROM asset_descriptors WHERE id = ?`

	d, err := scanDescriptor(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, faults.Storage("get descriptor", fmt.Errorf("querying descriptor %s: %w", id, err))
	}
	return d, nil
}

// ListDescriptors returns every descriptor ordered by id.
func (s *SQLiteStore) ListDescriptors(ctx context.Context) ([]*Descriptor, error) {
	query := `SELECT id, kind, mime_type, size, digest, created_at FROM asset_descriptors ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, faults.Storage("list descriptors", fmt.Errorf("querying descriptors: %w", err))
	}
	defer rows.Close()

	var out []*Descriptor
	for rows.Next() {
		d, err := scanDescriptor(rows)
		if err != nil {
			return nil, faults.Storage("list descriptors", fmt.Errorf("scanning descriptor: %w", err))
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("list descriptors", fmt.Errorf("iterating descriptors: %w", err))
	}
	return out, nil
}

// DeleteDescriptor removes the descriptor for id. Missing ids are ignored.
func (s *SQLiteStore) DeleteDescriptor(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM asset_descriptors WHERE id = ?`, id); err != nil {
		return faults.Storage("delete descriptor", fmt.Errorf("deleting descriptor %s: %w", id, err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDescriptor(row rowScanner) (*Descriptor, error) {
	var d Descriptor
	var createdAt string
	if err := row.Scan(&d.ID, &d.Kind, &d.MimeType, &d.Size, &d.Digest, &createdAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	d.CreatedAt = t
	return &d, nil
}

// SaveWardrobeItem inserts or replaces a wardrobe item.
func (s *SQLiteStore) SaveWardrobeItem(ctx context.Context, item *wardrobe.Item) error {
	query := `
		INSERT INTO wardrobe_items (id, name, image_ref, category, sub_category, brand, custom, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			image_ref = excluded.image_ref,
			category = excluded.category,
			sub_category = excluded.sub_category,
			brand = excluded.brand,
			custom = excluded.custom
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.ImageRef,
		string(item.Category),
		item.SubCategory,
		item.Brand,
		item.Custom,
		now(),
	)
	if err != nil {
		return faults.Storage("save wardrobe item", fmt.Errorf("upserting item %s: %w", item.ID, err))
	}

	s.logger.Debug("saved wardrobe item", "item_id", item.ID, "category", item.Category)
	return nil
}

// GetWardrobeItem returns the item with id.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) GetWardrobeItem(ctx context.Context, id string) (*wardrobe.Item, error) {
	query := `SELECT id, name, image_ref, category, sub_category, brand, custom FROM wardrobe_items WHERE id = ?`

	item, err := scanWardrobeItem(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, faults.Storage("get wardrobe item", fmt.Errorf("querying item %s: %w", id, err))
	}
	return item, nil
}

// ListWardrobeItems returns every item in insertion order.
func (s *SQLiteStore) ListWardrobeItems(ctx context.Context) ([]*wardrobe.Item, error) {
	query := `SELECT id, name, image_ref, category, sub_category, brand, custom FROM wardrobe_items ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, faults.Storage("list wardrobe items", fmt.Errorf("querying items: %w", err))
	}
	defer rows.Close()

	var items []*wardrobe.Item
	for rows.Next() {
		item, err := scanWardrobeItem(rows)
		if err != nil {
			return nil, faults.Storage("list wardrobe items", fmt.Errorf("scanning item: %w", err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("list wardrobe items", fmt.Errorf("iterating items: %w", err))
	}
	return items, nil
}

// DeleteWardrobeItem removes an item. Missing ids are ignored.
func (s *SQLiteStore) DeleteWardrobeItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM wardrobe_items WHERE id = ?`, id); err != nil {
		return faults.Storage("delete wardrobe item", fmt.Errorf("deleting item %s: %w", id, err))
	}
	return nil
}

func scanWardrobeItem(row rowScanner) (*wardrobe.Item, error) {
	var item wardrobe.Item
	var category string
	if err := row.Scan(&item.ID, &item.Name, &item.ImageRef, &category, &item.SubCategory, &item.Brand, &item.Custom); err != nil {
		return nil, err
	}
	item.Category = wardrobe.Category(category)
	return &item, nil
}

// SaveCharacter inserts or replaces a saved character.
func (s *SQLiteStore) SaveCharacter(ctx context.Context, c *Character) error {
	settings, err := json.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("encoding character settings: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO characters (id, name, image_ref, gender, settings_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.ImageRef,
		string(c.Gender),
		string(settings),
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return faults.Storage("save character", fmt.Errorf("inserting character %s: %w", c.ID, err))
	}
	return nil
}

// GetCharacter returns the saved character with id.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) GetCharacter(ctx context.Context, id string) (*Character, error) {
	query := `SELECT id, name, image_ref, gender, settings_json, created_at FROM characters WHERE id = ?`

	c, err := scanCharacter(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, faults.Storage("get character", fmt.Errorf("querying character %s: %w", id, err))
	}
	return c, nil
}

// ListCharacters returns saved characters, newest first.
func (s *SQLiteStore) ListCharacters(ctx context.Context) ([]*Character, error) {
	query := `SELECT id, name, image_ref, gender, settings_json, created_at FROM characters ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, faults.Storage("list characters", fmt.Errorf("querying characters: %w", err))
	}
	defer rows.Close()

	var out []*Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, faults.Storage("list characters", fmt.Errorf("scanning character: %w", err))
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("list characters", fmt.Errorf("iterating characters: %w", err))
	}
	return out, nil
}

// DeleteCharacter removes a saved character. Missing ids are ignored.
func (s *SQLiteStore) DeleteCharacter(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id); err != nil {
		return faults.Storage("delete character", fmt.Errorf("deleting character %s: %w", id, err))
	}
	return nil
}

func scanCharacter(row rowScanner) (*Character, error) {
	var c Character
	var gender, settings, createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.ImageRef, &gender, &settings, &createdAt); err != nil {
		return nil, err
	}
	c.Gender = scene.Gender(gender)
	if err := json.Unmarshal([]byte(settings), &c.Settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	c.CreatedAt = t
	return &c, nil
}

// SaveOutfit inserts or replaces a saved outfit.
func (s *SQLiteStore) SaveOutfit(ctx context.Context, o *Outfit) error {
	ids, err := json.Marshal(o.GarmentIDs)
	if err != nil {
		return fmt.Errorf("encoding garment ids: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO outfits (id, name, preview_ref, garment_ids_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		o.ID,
		o.Name,
		o.PreviewRef,
		string(ids),
		o.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return faults.Storage("save outfit", fmt.Errorf("inserting outfit %s: %w", o.ID, err))
	}
	return nil
}

// ListOutfits returns saved outfits, newest first.
func (s *SQLiteStore) ListOutfits(ctx context.Context) ([]*Outfit, error) {
	query := `SELECT id, name, preview_ref, garment_ids_json, created_at FROM outfits ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, faults.Storage("list outfits", fmt.Errorf("querying outfits: %w", err))
	}
	defer rows.Close()

	var out []*Outfit
	for rows.Next() {
		var o Outfit
		var ids, createdAt string
		if err := rows.Scan(&o.ID, &o.Name, &o.PreviewRef, &ids, &createdAt); err != nil {
			return nil, faults.Storage("list outfits", fmt.Errorf("scanning outfit: %w", err))
		}
		if err := json.Unmarshal([]byte(ids), &o.GarmentIDs); err != nil {
			return nil, faults.Storage("list outfits", fmt.Errorf("decoding garment ids: %w", err))
		}
		if o.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, faults.Storage("list outfits", fmt.Errorf("parsing created_at: %w", err))
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("list outfits", fmt.Errorf("iterating outfits: %w", err))
	}
	return out, nil
}

// DeleteOutfit removes a saved outfit. Missing ids are ignored.
func (s *SQLiteStore) DeleteOutfit(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM outfits WHERE id = ?`, id); err != nil {
		return faults.Storage("delete outfit", fmt.Errorf("deleting outfit %s: %w", id, err))
	}
	return nil
}

// SaveSession inserts or replaces the record for a live session.
func (s *SQLiteStore) SaveSession(ctx context.Context, rec *SessionRecord) error {
	ids, err := json.Marshal(rec.AssetIDs)
	if err != nil {
		return fmt.Errorf("encoding asset ids: %w", err)
	}

	query := `INSERT OR REPLACE INTO sessions (id, asset_ids_json, updated_at) VALUES (?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query, rec.ID, string(ids), rec.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return faults.Storage("save session", fmt.Errorf("inserting session %s: %w", rec.ID, err))
	}
	return nil
}

// ListSessions returns every live session record ordered by id.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, asset_ids_json, updated_at FROM sessions ORDER BY id`)
	if err != nil {
		return nil, faults.Storage("list sessions", fmt.Errorf("querying sessions: %w", err))
	}
	defer rows.Close()

	var out []*SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var ids, updatedAt string
		if err := rows.Scan(&rec.ID, &ids, &updatedAt); err != nil {
			return nil, faults.Storage("list sessions", fmt.Errorf("scanning session: %w", err))
		}
		if err := json.Unmarshal([]byte(ids), &rec.AssetIDs); err != nil {
			return nil, faults.Storage("list sessions", fmt.Errorf("decoding asset ids: %w", err))
		}
		if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, faults.Storage("list sessions", fmt.Errorf("parsing updated_at: %w", err))
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("list sessions", fmt.Errorf("iterating sessions: %w", err))
	}
	return out, nil
}

// DeleteSession removes a session record. Missing ids are ignored.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return faults.Storage("delete session", fmt.Errorf("deleting session %s: %w", id, err))
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Compile-time interface checks
var (
	_ AssetStore   = (*SQLiteStore)(nil)
	_ LibraryStore = (*SQLiteStore)(nil)
)
