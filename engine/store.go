package engine

import (
	"fmt"
	"sync"
)

// Store is a generic container for the domain fields of one agent
// schema F. It is the source of truth for agent fields; positions live
// exclusively in the spatial index, so a field write can never bypass
// Relocate. Uses the sparse-set pattern for cache-friendly iteration.
type Store[F any] struct {
	mu     sync.RWMutex
	nextID ID
	fields map[ID]F
	ids    []ID // dense array, insertion order
}

// NewStore creates an empty agent store for schema F.
func NewStore[F any]() *Store[F] {
	return &Store[F]{
		nextID: 1,
		fields: make(map[ID]F),
		ids:    make([]ID, 0, 64),
	}
}

// Create allocates a fresh unique ID and stores the agent's fields.
func (s *Store[F]) Create(fields F) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.fields[id] = fields
	s.ids = append(s.ids, id)
	return id
}

// Get retrieves a copy of an agent's fields.
func (s *Store[F]) Get(id ID) (F, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[id]
	return f, ok
}

// Set overwrites an agent's fields. Fails with ErrNotFound for an
// unknown ID; Set never creates agents.
func (s *Store[F]) Set(id ID, fields F) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fields[id]; !ok {
		return fmt.Errorf("agent %d: %w", id, ErrNotFound)
	}
	s.fields[id] = fields
	return nil
}

// Remove deletes an agent. Fails with ErrNotFound if absent.
func (s *Store[F]) Remove(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fields[id]; !ok {
		return fmt.Errorf("agent %d: %w", id, ErrNotFound)
	}
	delete(s.fields, id)

	// Shift-remove rather than swap-remove: the dense array must stay
	// in insertion order because schedulers may iterate snapshots in
	// that order.
	for i, e := range s.ids {
		if e == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}

// Has reports whether id is live.
func (s *Store[F]) Has(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fields[id]
	return ok
}

// IDs returns a snapshot of the live IDs, captured at call time.
// Mutations after the call do not affect an already-taken snapshot;
// iterating the live structure directly is not possible by design.
func (s *Store[F]) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]ID, len(s.ids))
	copy(result, s.ids)
	return result
}

// Len returns the number of live agents.
func (s *Store[F]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
