// Package memstore provides an in-memory, mutex-guarded implementation of
// the goAudit store contract. It is the reference backend for tests,
// examples, and small tools; iteration order is insertion order, so bulk
// operations behave deterministically.
package memstore

import (
	"context"
	"errors"
	"sync"

	goAudit "github.com/MrEthical07/goAudit"
)

// ErrIDMismatch is returned when a patch or replacement tries to change the
// identifier an entity is stored under.
var ErrIDMismatch = errors.New("entity id mismatch")

// Store defines a public type used by goAudit APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store[E goAudit.Entity[ID], ID comparable] struct {
	mu       sync.RWMutex
	entities map[ID]E
	order    []ID

	assign func(E) E
}

// Option configures a [Store] at construction.
type Option[E goAudit.Entity[ID], ID comparable] func(*Store[E, ID])

// WithIDAssigner installs a function that mints an identifier for entities
// created with the zero id. Without one, entities keep the id they carry.
func WithIDAssigner[E goAudit.Entity[ID], ID comparable](assign func(E) E) Option[E, ID] {
	return func(s *Store[E, ID]) {
		s.assign = assign
	}
}

// New creates an empty in-memory [Store].
func New[E goAudit.Entity[ID], ID comparable](opts ...Option[E, ID]) *Store[E, ID] {
	s := &Store[E, ID]{
		entities: make(map[ID]E),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len reports how many entities the store currently holds.
func (s *Store[E, ID]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

func (s *Store[E, ID]) assignID(entity E) E {
	if s.assign == nil {
		return entity
	}
	var zero ID
	if entity.EntityID() == zero {
		return s.assign(entity)
	}
	return entity
}

// CreateOne stores one entity. Returns [goAudit.ErrDuplicateEntity] when
// the id is already taken.
func (s *Store[E, ID]) CreateOne(_ context.Context, entity E) (E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity = s.assignID(entity)
	id := entity.EntityID()
	if _, exists := s.entities[id]; exists {
		var zero E
		return zero, goAudit.ErrDuplicateEntity
	}

	s.entities[id] = entity
	s.order = append(s.order, id)
	return entity, nil
}

// CreateMany stores a batch of entities. The batch is all-or-nothing: any
// duplicate id, against the store or within the batch, rejects the whole
// call before anything is written.
func (s *Store[E, ID]) CreateMany(_ context.Context, entities []E) ([]E, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assigned := make([]E, 0, len(entities))
	seen := make(map[ID]struct{}, len(entities))
	for _, entity := range entities {
		entity = s.assignID(entity)
		id := entity.EntityID()
		if _, exists := s.entities[id]; exists {
			return nil, goAudit.ErrDuplicateEntity
		}
		if _, dup := seen[id]; dup {
			return nil, goAudit.ErrDuplicateEntity
		}
		seen[id] = struct{}{}
		assigned = append(assigned, entity)
	}

	for _, entity := range assigned {
		id := entity.EntityID()
		s.entities[id] = entity
		s.order = append(s.order, id)
	}
	return assigned, nil
}

// FindByID returns the entity stored under id, or [goAudit.ErrNotFound].
func (s *Store[E, ID]) FindByID(_ context.Context, id ID) (E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[id]
	if !ok {
		var zero E
		return zero, goAudit.ErrNotFound
	}
	return entity, nil
}

// FindMany returns all entities matching the predicate in insertion order.
// A nil predicate matches everything.
func (s *Store[E, ID]) FindMany(_ context.Context, match goAudit.Predicate[E]) ([]E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []E
	for _, id := range s.order {
		entity := s.entities[id]
		if match == nil || match(entity) {
			out = append(out, entity)
		}
	}
	return out, nil
}

// UpdateByID applies the patch to the entity stored under id and returns
// the updated entity. The patch must not change the entity's id.
func (s *Store[E, ID]) UpdateByID(_ context.Context, id ID, patch goAudit.Patch[E]) (E, error) {
	var zero E
	if patch == nil {
		return zero, goAudit.ErrNilPatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entities[id]
	if !ok {
		return zero, goAudit.ErrNotFound
	}

	updated := patch(current)
	if updated.EntityID() != id {
		return zero, ErrIDMismatch
	}

	s.entities[id] = updated
	return updated, nil
}

// UpdateMany applies the patch to every entity matching the predicate and
// returns the updated entities in insertion order. The batch is
// all-or-nothing: an id-changing patch rejects the whole call.
func (s *Store[E, ID]) UpdateMany(_ context.Context, patch goAudit.Patch[E], match goAudit.Predicate[E]) ([]E, error) {
	if patch == nil {
		return nil, goAudit.ErrNilPatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type pending struct {
		id     ID
		entity E
	}
	var updates []pending
	for _, id := range s.order {
		entity := s.entities[id]
		if match != nil && !match(entity) {
			continue
		}
		updated := patch(entity)
		if updated.EntityID() != id {
			return nil, ErrIDMismatch
		}
		updates = append(updates, pending{id: id, entity: updated})
	}

	out := make([]E, 0, len(updates))
	for _, u := range updates {
		s.entities[u.id] = u.entity
		out = append(out, u.entity)
	}
	return out, nil
}

// ReplaceByID swaps the entity stored under id for the replacement, whose
// id must equal the target id.
func (s *Store[E, ID]) ReplaceByID(_ context.Context, id ID, replacement E) (E, error) {
	var zero E

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return zero, goAudit.ErrNotFound
	}
	if replacement.EntityID() != id {
		return zero, ErrIDMismatch
	}

	s.entities[id] = replacement
	return replacement, nil
}

// DeleteByID removes the entity stored under id, or returns
// [goAudit.ErrNotFound].
func (s *Store[E, ID]) DeleteByID(_ context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return goAudit.ErrNotFound
	}

	delete(s.entities, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteMany removes every entity matching the predicate and reports how
// many were removed. Zero matches is a successful no-op.
func (s *Store[E, ID]) DeleteMany(_ context.Context, match goAudit.Predicate[E]) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []ID
	var removed int64
	for _, id := range s.order {
		entity := s.entities[id]
		if match == nil || match(entity) {
			delete(s.entities, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}
