package state

import (
	"log"
	"sync"
)

// Entry is one committed shape and the message id it was broadcast under.
// Entries from peers that send no id have an empty ID and are never treated
// as duplicates.
type Entry struct {
	ID    string
	Shape Shape
}

// ShapesOf drops the ids.
func ShapesOf(entries []Entry) []Shape {
	out := make([]Shape, len(entries))
	for i, e := range entries {
		out[i] = e.Shape
	}
	return out
}

// Store is the append-only, ordered log of a room's committed shapes.
// Insertion order is rendering order. A message id is stored at most once.
type Store struct {
	entries      []Entry
	ids          map[string]struct{}
	bootstrapped bool
	mu           sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		entries: make([]Entry, 0),
		ids:     make(map[string]struct{}),
	}
}

// Append adds a shape without an id to the end of the log and returns its
// index.
func (s *Store) Append(shape Shape) int {
	i, _ := s.Add(Entry{Shape: shape})
	return i
}

// Add appends e unless its id is already in the log. It returns the index of
// the entry and whether it was added.
func (s *Store) Add(e Entry) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID != "" {
		if _, dup := s.ids[e.ID]; dup {
			return -1, false
		}
		s.ids[e.ID] = struct{}{}
	}
	s.entries = append(s.entries, e)
	return len(s.entries) - 1, true
}

// Bootstrap merges the room history into the log. History goes first and
// anything appended before the history arrived keeps its relative order
// after it, unless the history already holds the same id. Only the first
// call has an effect.
func (s *Store) Bootstrap(history []Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bootstrapped {
		log.Printf("[STORE] Ignoring repeated bootstrap of %d shapes", len(history))
		return false
	}
	s.bootstrapped = true

	ids := make(map[string]struct{}, len(history)+len(s.entries))
	merged := make([]Entry, 0, len(history)+len(s.entries))
	keep := func(e Entry) bool {
		if e.ID == "" {
			return true
		}
		if _, dup := ids[e.ID]; dup {
			return false
		}
		ids[e.ID] = struct{}{}
		return true
	}

	for _, e := range history {
		if keep(e) {
			merged = append(merged, e)
		}
	}
	fromHistory := len(merged)
	for _, e := range s.entries {
		if keep(e) {
			merged = append(merged, e)
		}
	}
	if early := len(merged) - fromHistory; early > 0 {
		log.Printf("[STORE] Kept %d shapes committed before history arrived", early)
	}
	if dropped := len(history) + len(s.entries) - len(merged); dropped > 0 {
		log.Printf("[STORE] Dropped %d duplicate shapes while merging history", dropped)
	}

	s.entries = merged
	s.ids = ids
	return true
}

// Bootstrapped reports whether history has been merged.
func (s *Store) Bootstrapped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bootstrapped
}

// Shapes returns a snapshot of the log.
func (s *Store) Shapes() []Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ShapesOf(s.entries)
}

// Entries returns a snapshot of the log with ids.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
