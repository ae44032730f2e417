// ABOUTME: Asset registry issuing unique ids, persisting payloads with descriptors and resolving references
// ABOUTME: Tracks renders in the transient pool and runs reachability-based collection

package registry

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/metrics"
	"github.com/2389/fitcheck-studio/internal/pool"
	"github.com/2389/fitcheck-studio/internal/store"
)

// Retainer reports asset ids that must survive collection.
type Retainer interface {
	RetainedAssets(ctx context.Context) ([]string, error)
}

// RetainerFunc adapts a function to Retainer.
type RetainerFunc func(ctx context.Context) ([]string, error)

// RetainedAssets calls f.
func (f RetainerFunc) RetainedAssets(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Option configures a Registry.
type Option func(*Registry)

// WithPool sets the transient pool renders are tracked in.
func WithPool(p *pool.Tracker) Option {
	return func(r *Registry) {
		r.pool = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithClock sets the time source used for ids and descriptors.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry issues asset ids and mediates all access to stored payloads.
type Registry struct {
	store   store.AssetStore
	pool    *pool.Tracker
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// mu serializes id issuance with the store write, and collection with both.
	mu  sync.Mutex
	seq uint64

	retainersMu sync.RWMutex
	retainers   []Retainer
}

// New creates a registry over s.
func New(s store.AssetStore, opts ...Option) *Registry {
	r := &Registry{store: s, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.pool == nil {
		r.pool = pool.New(pool.DefaultMaxTransient)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "registry")
	return r
}

// Pool returns the transient pool.
func (r *Registry) Pool() *pool.Tracker {
	return r.pool
}

// Register persists payload under a fresh id and returns the id.
// Renders are also added to the transient pool. On any failure nothing is
// left in the store or the pool.
func (r *Registry) Register(ctx context.Context, payload string, kind Kind) (string, error) {
	if !kind.Valid() {
		return "", faults.Validationf("register", "unknown asset kind %q", kind)
	}
	if payload == "" {
		return "", faults.Validationf("register", "payload is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	id, err := r.nextID(ctx, kind, now)
	if err != nil {
		return "", err
	}

	if err := r.store.SaveAsset(ctx, id, payload); err != nil {
		return "", faults.Storage("register", err)
	}

	desc := describePayload(id, kind, payload, now)
	if err := r.store.SaveDescriptor(ctx, desc); err != nil {
		if rbErr := r.store.DeleteAsset(ctx, id); rbErr != nil {
			r.logger.Error("rolling back asset after descriptor failure", "asset_id", id, "error", rbErr)
		}
		return "", faults.Storage("register", err)
	}

	r.metrics.AssetRegistered(string(kind))

	if kind == KindRender {
		if evicted, ok := r.pool.Add(id); ok {
			r.metrics.PoolEvicted()
			r.logger.Debug("evicted from transient pool", "evicted", evicted)
		}
		r.metrics.SetPoolSize(r.pool.Len())
	}

	r.logger.Info("registered asset", "asset_id", id, "kind", kind, "size", desc.Size, "pool_size", r.pool.Len())
	return id, nil
}

// nextID returns an id not present in the store. Must be called with mu held.
func (r *Registry) nextID(ctx context.Context, kind Kind, now time.Time) (string, error) {
	for {
		r.seq++
		id := formatID(kind, now.UnixMilli(), r.seq)

		_, err := r.store.GetAsset(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return id, nil
		}
		if err != nil {
			return "", faults.Storage("register", fmt.Errorf("checking id %s: %w", id, err))
		}
		r.logger.Warn("asset id already in use, advancing", "asset_id", id)
	}
}

// describePayload builds the metadata partition entry for a payload.
func describePayload(id string, kind Kind, payload string, now time.Time) *store.Descriptor {
	sum := blake2b.Sum256([]byte(payload))
	return &store.Descriptor{
		ID:        id,
		Kind:      string(kind),
		MimeType:  mimeOf(payload),
		Size:      int64(len(payload)),
		Digest:    hex.EncodeToString(sum[:]),
		CreatedAt: now.UTC(),
	}
}

// mimeOf returns the media type declared by a data URL, or a generic type.
func mimeOf(payload string) string {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return "application/octet-stream"
	}
	header, _, ok := strings.Cut(rest, ",")
	if !ok {
		return "application/octet-stream"
	}
	mime, _, _ := strings.Cut(header, ";")
	if mime == "" {
		return "text/plain"
	}
	return mime
}

// Resolve returns the payload for a registry id, or ref itself for anything else.
func (r *Registry) Resolve(ctx context.Context, ref string) (string, error) {
	if !IsAssetID(ref) {
		return ref, nil
	}

	payload, err := r.store.GetAsset(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return "", faults.Resolution("resolve", fmt.Errorf("asset %s: %w", ref, err))
	}
	if err != nil {
		return "", faults.Storage("resolve", err)
	}
	return payload, nil
}

// Describe returns the stored descriptor for id.
func (r *Registry) Describe(ctx context.Context, id string) (*store.Descriptor, error) {
	d, err := r.store.GetDescriptor(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, faults.Resolution("describe", fmt.Errorf("asset %s: %w", id, err))
	}
	if err != nil {
		return nil, faults.Storage("describe", err)
	}
	return d, nil
}

// ExportVault serializes every stored asset as a JSON object of id to payload.
func (r *Registry) ExportVault(ctx context.Context) ([]byte, error) {
	keys, err := r.store.ListAssetKeys(ctx)
	if err != nil {
		return nil, faults.Storage("export vault", err)
	}

	vault := make(map[string]string, len(keys))
	for _, id := range keys {
		payload, err := r.store.GetAsset(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, faults.Storage("export vault", err)
		}
		vault[id] = payload
	}

	data, err := json.Marshal(vault)
	if err != nil {
		return nil, fmt.Errorf("encoding vault: %w", err)
	}

	r.logger.Info("exported vault", "assets", len(vault), "bytes", len(data))
	return data, nil
}

// ImportVault restores a bundle written by ExportVault. Keys without the
// registry prefix or with an unknown kind are skipped. Returns the number of
// assets written.
func (r *Registry) ImportVault(ctx context.Context, data []byte) (int, error) {
	var vault map[string]string
	if err := json.Unmarshal(data, &vault); err != nil {
		return 0, faults.Validation("import vault", fmt.Errorf("decoding vault: %w", err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(vault))
	for id := range vault {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	imported := 0
	now := r.now()
	for _, id := range ids {
		payload := vault[id]
		kind, ok := KindOf(id)
		if !ok || payload == "" {
			r.logger.Warn("skipping vault entry", "asset_id", id)
			continue
		}
		if err := r.store.SaveAsset(ctx, id, payload); err != nil {
			return imported, faults.Storage("import vault", err)
		}
		if err := r.store.SaveDescriptor(ctx, describePayload(id, kind, payload, now)); err != nil {
			if rbErr := r.store.DeleteAsset(ctx, id); rbErr != nil {
				r.logger.Error("rolling back vault entry after descriptor failure", "asset_id", id, "error", rbErr)
			}
			return imported, faults.Storage("import vault", err)
		}
		imported++
	}

	r.logger.Info("imported vault", "assets", imported, "entries", len(vault))
	return imported, nil
}

// VaultStats summarizes the stored assets.
type VaultStats struct {
	Assets  int
	ByKind  map[Kind]int
	Bytes   int64
	PoolLen int
	PoolMax int
}

// Stats reads every descriptor and summarizes them.
func (r *Registry) Stats(ctx context.Context) (*VaultStats, error) {
	descs, err := r.store.ListDescriptors(ctx)
	if err != nil {
		return nil, faults.Storage("vault stats", err)
	}

	stats := &VaultStats{ByKind: make(map[Kind]int), PoolLen: r.pool.Len(), PoolMax: r.pool.Max()}
	for _, d := range descs {
		stats.Assets++
		stats.ByKind[Kind(d.Kind)]++
		stats.Bytes += d.Size
	}
	return stats, nil
}
