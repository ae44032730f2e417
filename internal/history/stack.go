// ABOUTME: Linear undo history of render asset ids rooted at a base render
// ABOUTME: The base entry is never popped; undo below it is an invariant violation

// Package history records the sequence of renders produced in a session.
// Entry 0 is the base render; each later entry is the result of one
// composition step. Undo pops the tail and returns the render now current.
package history

import (
	"errors"
	"slices"

	"github.com/2389/fitcheck-studio/internal/faults"
)

// ErrAtBase is returned by Undo when only the base entry remains.
var ErrAtBase = errors.New("nothing to undo")

// Stack is a linear history. Not safe for concurrent use.
type Stack struct {
	entries []string
}

// New starts a history whose only entry is base.
func New(base string) *Stack {
	return &Stack{entries: []string{base}}
}

// Push appends a new current render.
func (s *Stack) Push(id string) {
	s.entries = append(s.entries, id)
}

// Undo pops the current render and returns the one beneath it.
// The stack is left unchanged if only the base remains.
func (s *Stack) Undo() (string, error) {
	if len(s.entries) <= 1 {
		return "", faults.Invariant("undo", ErrAtBase)
	}
	s.entries = s.entries[:len(s.entries)-1]
	return s.entries[len(s.entries)-1], nil
}

// CanUndo reports whether Undo would succeed.
func (s *Stack) CanUndo() bool {
	return len(s.entries) > 1
}

// Current returns the latest entry.
func (s *Stack) Current() string {
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[len(s.entries)-1]
}

// Base returns entry 0.
func (s *Stack) Base() string {
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[0]
}

// Len returns the number of entries, including the base.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the history, base first.
func (s *Stack) Entries() []string {
	return slices.Clone(s.entries)
}

// Reset discards the history and starts again from base.
func (s *Stack) Reset(base string) {
	s.entries = []string{base}
}
