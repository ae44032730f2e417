// ABOUTME: Studio session state, construction options and read-only snapshots
// ABOUTME: Holds base render, layer stack, history and settings behind one busy flag

package studio

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/generation"
	"github.com/2389/fitcheck-studio/internal/history"
	"github.com/2389/fitcheck-studio/internal/layers"
	"github.com/2389/fitcheck-studio/internal/metrics"
	"github.com/2389/fitcheck-studio/internal/registry"
	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/store"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// ErrBusy is returned when a mutation is attempted while another is in flight.
var ErrBusy = errors.New("session is busy")

// stepKind records what produced a history entry so undo can reverse it.
type stepKind int

const (
	stepBase stepKind = iota
	stepGarment
	stepScene
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithMetrics records history depth and busy rejections in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithFetcher sets how remote garment images are inlined.
func WithFetcher(f generation.Fetcher) Option {
	return func(s *Session) {
		s.fetcher = f
	}
}

// WithClock sets the time source for saved characters and outfits.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is one composition session over a registry and a library.
type Session struct {
	id      string
	reg     *registry.Registry
	gen     generation.Generator
	lib     store.LibraryStore
	fetcher generation.Fetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	busy atomic.Bool

	// mu guards the fields below. Held only for reads and commits, never
	// across a generation call.
	mu       sync.RWMutex
	base     string
	gender   scene.Gender
	history  *history.Stack
	steps    []stepKind
	layers   *layers.Stack
	settings scene.Settings
}

// New creates a session and registers its retainers with reg.
func New(reg *registry.Registry, gen generation.Generator, lib store.LibraryStore, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New().String(),
		reg:      reg,
		gen:      gen,
		lib:      lib,
		now:      time.Now,
		layers:   layers.New(),
		settings: scene.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = generation.NewHTTPFetcher(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "studio", "session_id", s.id)

	reg.AddRetainer(registry.RetainerFunc(s.retainedAssets))
	reg.AddRetainer(registry.RetainerFunc(s.libraryAssets))
	return s
}

// ID identifies the session's record in the library.
func (s *Session) ID() string {
	return s.id
}

// Close removes the session's record so other processes stop retaining its
// renders. The session must not be used afterwards.
func (s *Session) Close(ctx context.Context) error {
	if err := s.lib.DeleteSession(ctx, s.id); err != nil {
		return faults.Storage("close session", err)
	}
	s.logger.Info("session closed")
	return nil
}

// State is a point-in-time copy of the session.
type State struct {
	Base     string          `json:"base,omitempty"`
	Current  string          `json:"current,omitempty"`
	History  []string        `json:"history"`
	Layers   []wardrobe.Item `json:"layers"`
	Settings scene.Settings  `json:"settings"`
	Busy     bool            `json:"busy"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Base:     s.base,
		History:  []string{},
		Layers:   s.layers.Items(),
		Settings: s.settings,
		Busy:     s.busy.Load(),
	}
	if s.history != nil {
		st.Current = s.history.Current()
		st.History = s.history.Entries()
	}
	return st
}

// CanUndo reports whether there is a step above the base to undo.
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history != nil && s.history.CanUndo()
}

// Settings returns the current scene settings.
func (s *Session) Settings() scene.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the scene settings used by later steps.
func (s *Session) SetSettings(settings scene.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// acquire claims the busy flag or reports ErrBusy.
func (s *Session) acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		s.metrics.BusyRejected()
		return ErrBusy
	}
	return nil
}

func (s *Session) release() {
	s.busy.Store(false)
}

// retainedAssets lists every asset id the live session depends on.
func (s *Session) retainedAssets(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	if registry.IsAssetID(s.base) {
		ids = append(ids, s.base)
	}
	if s.history != nil {
		for _, id := range s.history.Entries() {
			if registry.IsAssetID(id) {
				ids = append(ids, id)
			}
		}
	}
	for _, item := range s.layers.Items() {
		if registry.IsAssetID(item.ImageRef) {
			ids = append(ids, item.ImageRef)
		}
	}
	return ids, nil
}

// persist saves everything the session retains, plus extra, as its record.
// Called before a step commits so the record never lags the live state.
func (s *Session) persist(ctx context.Context, extra ...string) error {
	ids, err := s.retainedAssets(ctx)
	if err != nil {
		return err
	}
	for _, id := range extra {
		if registry.IsAssetID(id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	rec := &store.SessionRecord{ID: s.id, AssetIDs: ids, UpdatedAt: s.now()}
	if err := s.lib.SaveSession(ctx, rec); err != nil {
		return faults.Storage("persist session", err)
	}
	return nil
}

// persistQuiet records the current live set after a step that only shrinks it.
// A failure leaves an older, larger record in place and is only logged.
func (s *Session) persistQuiet(ctx context.Context) {
	if err := s.persist(ctx); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
}

// libraryAssets lists every asset id the persisted library references,
// including the records of live sessions in any process sharing the library.
func (s *Session) libraryAssets(ctx context.Context) ([]string, error) {
	var ids []string

	sessions, err := s.lib.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range sessions {
		for _, id := range rec.AssetIDs {
			if registry.IsAssetID(id) {
				ids = append(ids, id)
			}
		}
	}

	items, err := s.lib.ListWardrobeItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if registry.IsAssetID(item.ImageRef) {
			ids = append(ids, item.ImageRef)
		}
	}

	chars, err := s.lib.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range chars {
		if registry.IsAssetID(c.ImageRef) {
			ids = append(ids, c.ImageRef)
		}
	}

	outfits, err := s.lib.ListOutfits(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range outfits {
		if registry.IsAssetID(o.PreviewRef) {
			ids = append(ids, o.PreviewRef)
		}
	}
	return ids, nil
}
