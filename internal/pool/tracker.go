// ABOUTME: Bounded FIFO set of recently registered render ids
// ABOUTME: Eviction drops ids from the set only; persisted assets are never deleted here

package pool

import (
	"container/list"
	"sync"
)

// DefaultMaxTransient is the capacity used when none is configured.
const DefaultMaxTransient = 10

// Tracker is a thread-safe, size-limited set of asset ids kept in insertion order.
// Uses a doubly-linked list for O(1) eviction of the oldest member.
type Tracker struct {
	mu      sync.RWMutex
	members map[string]*list.Element
	order   *list.List // ids in insertion order (oldest at front)
	max     int
}

// New creates a tracker holding at most max ids. max <= 0 selects DefaultMaxTransient.
func New(max int) *Tracker {
	if max <= 0 {
		max = DefaultMaxTransient
	}
	return &Tracker{
		members: make(map[string]*list.Element),
		order:   list.New(),
		max:     max,
	}
}

// Add inserts id. If the tracker then exceeds its capacity the oldest-inserted
// id is removed from the set and returned with ok == true.
func (t *Tracker) Add(id string) (evicted string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.members[id]; exists {
		return "", false
	}

	t.members[id] = t.order.PushBack(id)

	if len(t.members) > t.max {
		return t.evictOldest()
	}
	return "", false
}

// evictOldest removes the front of the insertion list. Must be called with mu held.
func (t *Tracker) evictOldest() (string, bool) {
	front := t.order.Front()
	if front == nil {
		return "", false
	}

	id, _ := front.Value.(string)
	t.order.Remove(front)
	delete(t.members, id)
	return id, true
}

// Contains reports whether id is currently tracked.
func (t *Tracker) Contains(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.members[id]
	return ok
}

// Snapshot returns the tracked ids in insertion order.
func (t *Tracker) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, t.order.Len())
	for e := t.order.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(string))
	}
	return ids
}

// Len returns the number of tracked ids.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}

// Max returns the tracker capacity.
func (t *Tracker) Max() int {
	return t.max
}
