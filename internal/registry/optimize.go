// ABOUTME: Reachability-based collection of stored assets
// ABOUTME: Keeps everything named by a retainer, held in the transient pool, or inside the grace window

package registry

import (
	"context"
	"fmt"
	"time"
)

// OptimizeReport describes one collection pass.
type OptimizeReport struct {
	Skipped   bool // no retainer registered, nothing examined
	DryRun    bool
	Scanned   int
	Reachable int
	Spared    int // unreachable but inside the grace window
	Removed   int // with DryRun, what would have been removed
}

// OptimizeOption configures one Optimize pass.
type OptimizeOption func(*optimizeConfig)

type optimizeConfig struct {
	grace  time.Duration
	dryRun bool
}

// WithGraceWindow keeps every asset created less than d ago, reachable or not.
// Assets with no descriptor have no known age and are also kept when d > 0.
func WithGraceWindow(d time.Duration) OptimizeOption {
	return func(c *optimizeConfig) {
		c.grace = d
	}
}

// DryRun reports what would be removed without deleting anything.
func DryRun() OptimizeOption {
	return func(c *optimizeConfig) {
		c.dryRun = true
	}
}

// AddRetainer registers a source of reachable asset ids.
func (r *Registry) AddRetainer(ret Retainer) {
	r.retainersMu.Lock()
	defer r.retainersMu.Unlock()
	r.retainers = append(r.retainers, ret)
}

// Optimize deletes stored assets that no retainer and no pool entry reference.
// With no retainers registered it does nothing. A retainer error aborts the
// pass before anything is deleted.
func (r *Registry) Optimize(ctx context.Context, opts ...OptimizeOption) (OptimizeReport, error) {
	var cfg optimizeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r.retainersMu.RLock()
	retainers := append([]Retainer(nil), r.retainers...)
	r.retainersMu.RUnlock()

	if len(retainers) == 0 {
		r.logger.Info("optimize skipped: no retainers registered")
		return OptimizeReport{Skipped: true, DryRun: cfg.dryRun}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reachable := make(map[string]struct{})
	for _, ret := range retainers {
		ids, err := ret.RetainedAssets(ctx)
		if err != nil {
			return OptimizeReport{}, fmt.Errorf("collecting retained assets: %w", err)
		}
		for _, id := range ids {
			if IsAssetID(id) {
				reachable[id] = struct{}{}
			}
		}
	}
	for _, id := range r.pool.Snapshot() {
		reachable[id] = struct{}{}
	}

	keys, err := r.store.ListAssetKeys(ctx)
	if err != nil {
		return OptimizeReport{}, err
	}

	report := OptimizeReport{DryRun: cfg.dryRun, Scanned: len(keys), Reachable: len(reachable)}

	active := make(map[string]struct{}, len(reachable))
	for id := range reachable {
		active[id] = struct{}{}
	}
	if cfg.grace > 0 {
		spared, err := r.youngAssets(ctx, keys, reachable, r.now().Add(-cfg.grace))
		if err != nil {
			return OptimizeReport{}, err
		}
		for _, id := range spared {
			active[id] = struct{}{}
		}
		report.Spared = len(spared)
	}

	if cfg.dryRun {
		for _, id := range keys {
			if _, keep := active[id]; !keep {
				report.Removed++
			}
		}
		r.logger.Info("optimize dry run", "scanned", report.Scanned, "reachable", report.Reachable, "spared", report.Spared, "would_remove", report.Removed)
		return report, nil
	}

	removed, err := r.store.ClearObsolete(ctx, active)
	if err != nil {
		return OptimizeReport{}, err
	}
	report.Removed = removed

	r.metrics.OptimizeRemoved(removed)
	r.logger.Info("optimize complete", "scanned", report.Scanned, "reachable", report.Reachable, "spared", report.Spared, "removed", report.Removed)
	return report, nil
}

// youngAssets returns the unreachable keys created after cutoff or with no descriptor.
func (r *Registry) youngAssets(ctx context.Context, keys []string, reachable map[string]struct{}, cutoff time.Time) ([]string, error) {
	descs, err := r.store.ListDescriptors(ctx)
	if err != nil {
		return nil, err
	}
	created := make(map[string]time.Time, len(descs))
	for _, d := range descs {
		created[d.ID] = d.CreatedAt
	}

	var young []string
	for _, id := range keys {
		if _, ok := reachable[id]; ok {
			continue
		}
		at, ok := created[id]
		if !ok || at.After(cutoff) {
			young = append(young, id)
		}
	}
	return young, nil
}
