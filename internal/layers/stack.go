// ABOUTME: Rank-ordered stack of applied garments with insertion sequence numbers
// ABOUTME: RemoveLast undoes the most recent insertion regardless of its rank position

package layers

import (
	"fmt"
	"slices"
	"strings"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// Entry is one applied garment.
type Entry struct {
	Item wardrobe.Item
	Seq  uint64
}

// Stack is an ordered set of garments. The zero value is not usable; call New.
// Stack is not safe for concurrent use; the studio session serializes access.
type Stack struct {
	entries []Entry
	nextSeq uint64
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Insert adds item at its rank position, after any entries of equal rank.
func (s *Stack) Insert(item wardrobe.Item) error {
	if strings.TrimSpace(item.ID) == "" {
		return faults.Validationf("insert layer", "item id is required")
	}
	if s.Contains(item.ID) {
		return faults.Validationf("insert layer", "item %s is already applied", item.ID)
	}

	s.nextSeq++
	s.entries = append(s.entries, Entry{Item: item, Seq: s.nextSeq})
	slices.SortStableFunc(s.entries, compareEntries)
	return nil
}

func compareEntries(a, b Entry) int {
	if r := a.Item.Rank() - b.Item.Rank(); r != 0 {
		return r
	}
	switch {
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	default:
		return 0
	}
}

// RemoveLast removes the most recently inserted entry.
func (s *Stack) RemoveLast() (wardrobe.Item, bool) {
	if len(s.entries) == 0 {
		return wardrobe.Item{}, false
	}

	latest := 0
	for i, e := range s.entries {
		if e.Seq > s.entries[latest].Seq {
			latest = i
		}
	}

	item := s.entries[latest].Item
	s.entries = slices.Delete(s.entries, latest, latest+1)
	return item, true
}

// Items returns the applied garments in layer order.
func (s *Stack) Items() []wardrobe.Item {
	items := make([]wardrobe.Item, len(s.entries))
	for i, e := range s.entries {
		items[i] = e.Item
	}
	return items
}

// Entries returns a copy of the entries in layer order.
func (s *Stack) Entries() []Entry {
	return slices.Clone(s.entries)
}

// IDs returns the item ids in layer order.
func (s *Stack) IDs() []string {
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.Item.ID
	}
	return ids
}

// OrderedNames returns the item names in layer order.
func (s *Stack) OrderedNames() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Item.Name
	}
	return names
}

// Describe renders the ordered names as a comma separated list.
func (s *Stack) Describe() string {
	return strings.Join(s.OrderedNames(), ", ")
}

// Contains reports whether an item with id is applied.
func (s *Stack) Contains(id string) bool {
	return slices.ContainsFunc(s.entries, func(e Entry) bool { return e.Item.ID == id })
}

// Len returns the number of applied garments.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Clone returns an independent copy, including the sequence counter.
func (s *Stack) Clone() *Stack {
	return &Stack{entries: slices.Clone(s.entries), nextSeq: s.nextSeq}
}

// Reset removes every entry. Sequence numbers keep increasing.
func (s *Stack) Reset() {
	s.entries = nil
}

func (s *Stack) String() string {
	return fmt.Sprintf("layers[%s]", s.Describe())
}
