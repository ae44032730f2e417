// Package store provides the Durable Store for generated assets and the
// library of wardrobe items, saved characters and saved outfits.
//
// # Architecture
//
// Two interfaces split the surface:
//
//   - AssetStore: the assets partition (payloads keyed by asset id) and the
//     metadata partition (one Descriptor per asset)
//   - LibraryStore: wardrobe items, saved characters and saved outfits
//
// SQLiteStore implements both. S3Store implements AssetStore only and is
// paired with a SQLiteStore library by Open. MockStore implements both in
// memory for tests.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode and full synchronous commits so a save
// is durable before it returns:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA synchronous=FULL;
//
// Database file locations:
//
//   - Default: ~/.local/share/fitcheck/studio.db
//   - Testing: :memory: (in-memory database)
//
// # S3 Layout
//
// Payloads are stored under <prefix>assets/<id> and descriptors as JSON under
// <prefix>metadata/<id>.json.
//
// # Error Handling
//
// A missing key is reported as ErrNotFound, never as a storage failure. Every
// I/O failure is wrapped with faults.ErrStorage and keeps its cause.
//
// # Testing
//
// Use NewMockStore() for unit tests. FailNext injects a storage failure into
// the next call of a named operation:
//
//	s := store.NewMockStore()
//	s.FailNext("SaveDescriptor")
//
// Use NewSQLiteStore(":memory:") for integration tests with real SQLite.
package store
