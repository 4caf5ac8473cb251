// Package store persists the set of offer ids that have already been
// announced. Membership only grows: ids are added, never removed.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrStore marks any failure to read or write persisted state.
	ErrStore = errors.New("identifier store")

	// ErrCorruptState is returned by Load when state exists but cannot be
	// decoded. It wraps ErrStore.
	ErrCorruptState = fmt.Errorf("%w: corrupt state", ErrStore)
)

// IDStore loads and saves the notified-id set.
type IDStore interface {
	// Load returns the persisted set, or an empty set when no state exists.
	Load(ctx context.Context) (IDSet, error)
	// Save replaces the persisted state with ids.
	Save(ctx context.Context, ids IDSet) error
	// Ping reports whether the backing storage is usable.
	Ping(ctx context.Context) error
}

// IDSet is a set of offer ids.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Len returns the number of ids.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
