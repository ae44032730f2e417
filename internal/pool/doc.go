// Package pool tracks which render assets are considered "hot".
//
// # Soft Eviction
//
// The Tracker is a bounded, insertion-ordered set. When an Add pushes it past
// its capacity the oldest-inserted id is dropped from the set, and only from the
// set: the Durable Store entry behind that id is never touched, so every render
// in the history stays resolvable. Membership is a hint for maintenance passes,
// never a source of truth.
//
// Eviction order is FIFO by first insertion. Re-adding an id that is already a
// member does not refresh its position.
//
//	t := pool.New(10)
//	if evicted, ok := t.Add(id); ok {
//		logger.Debug("pool evicted", "asset_id", evicted)
//	}
package pool
