package goAudit

import (
	"context"
	"strconv"
	"sync"
	"testing"
)

// benchStore is a minimal map-backed Store without call recording, so
// benchmark numbers reflect the wrapper and not test bookkeeping.
type benchStore struct {
	mu       sync.RWMutex
	entities map[string]account
}

func newBenchStore() *benchStore {
	return &benchStore{entities: make(map[string]account)}
}

func (s *benchStore) CreateOne(_ context.Context, entity account) (account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = entity
	return entity, nil
}

func (s *benchStore) CreateMany(_ context.Context, entities []account) ([]account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entity := range entities {
		s.entities[entity.ID] = entity
	}
	return entities, nil
}

func (s *benchStore) FindByID(_ context.Context, id string) (account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[id]
	if !ok {
		return account{}, ErrNotFound
	}
	return entity, nil
}

func (s *benchStore) FindMany(_ context.Context, match Predicate[account]) ([]account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]account, 0, len(s.entities))
	for _, entity := range s.entities {
		if match == nil || match(entity) {
			out = append(out, entity)
		}
	}
	return out, nil
}

func (s *benchStore) UpdateByID(_ context.Context, id string, patch Patch[account]) (account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.entities[id]
	if !ok {
		return account{}, ErrNotFound
	}
	entity = patch(entity)
	s.entities[id] = entity
	return entity, nil
}

func (s *benchStore) UpdateMany(_ context.Context, patch Patch[account], match Predicate[account]) ([]account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]account, 0)
	for id, entity := range s.entities {
		if match == nil || match(entity) {
			entity = patch(entity)
			s.entities[id] = entity
			out = append(out, entity)
		}
	}
	return out, nil
}

func (s *benchStore) ReplaceByID(_ context.Context, id string, replacement account) (account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return account{}, ErrNotFound
	}
	s.entities[id] = replacement
	return replacement, nil
}

func (s *benchStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return ErrNotFound
	}
	delete(s.entities, id)
	return nil
}

func (s *benchStore) DeleteMany(_ context.Context, match Predicate[account]) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, entity := range s.entities {
		if match == nil || match(entity) {
			delete(s.entities, id)
			n++
		}
	}
	return n, nil
}

func newBenchmarkAudited(tb testing.TB, auditEnabled bool) (*Audited[account, string], func()) {
	tb.Helper()

	builder := New[account, string](newBenchStore())
	if auditEnabled {
		builder = builder.
			WithIdentityProvider(StaticProvider("bench")).
			WithEntityName("accounts").
			WithActionKey("accounts-bench").
			WithSink(NoOpSink{})
	}

	audited, err := builder.Build()
	if err != nil {
		tb.Fatalf("Build failed: %v", err)
	}

	return audited, audited.Close
}

func BenchmarkCreateOneAuditDisabled(b *testing.B) {
	audited, cleanup := newBenchmarkAudited(b, false)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := audited.CreateOne(context.Background(), account{ID: strconv.Itoa(i), Balance: i}); err != nil {
			b.Fatalf("CreateOne failed: %v", err)
		}
	}
}

func BenchmarkCreateOneAuditEnabled(b *testing.B) {
	audited, cleanup := newBenchmarkAudited(b, true)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := audited.CreateOne(context.Background(), account{ID: strconv.Itoa(i), Balance: i}); err != nil {
			b.Fatalf("CreateOne failed: %v", err)
		}
	}
}

func BenchmarkFindByIDAuditDisabled(b *testing.B) {
	audited, cleanup := newBenchmarkAudited(b, false)
	defer cleanup()

	if _, err := audited.CreateOne(context.Background(), account{ID: "a1", Balance: 1}); err != nil {
		b.Fatalf("seed failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := audited.FindByID(context.Background(), "a1"); err != nil {
			b.Fatalf("FindByID failed: %v", err)
		}
	}
}

func BenchmarkFindByIDAuditEnabled(b *testing.B) {
	audited, cleanup := newBenchmarkAudited(b, true)
	defer cleanup()

	if _, err := audited.CreateOne(context.Background(), account{ID: "a1", Balance: 1}); err != nil {
		b.Fatalf("seed failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := audited.FindByID(context.Background(), "a1"); err != nil {
			b.Fatalf("FindByID failed: %v", err)
		}
	}
}

func BenchmarkUpdateByIDAuditDisabled(b *testing.B) {
	audited, cleanup := newBenchmarkAudited(b, false)
	defer cleanup()

	if _, err := audited.CreateOne(context.Background(), account{ID: "a1", Balance: 1}); err != nil {
		b.Fatalf("seed failed: %v", err)
	}

	bump := func(a account) account {
		a.Balance++
		return a
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := audited.UpdateByID(context.Background(), "a1", bump); err != nil {
			b.Fatalf("UpdateByID failed: %v", err)
		}
	}
}

func BenchmarkUpdateByIDAuditEnabled(b *testing.B) {
	audited, cleanup := newBenchmarkAudited(b, true)
	defer cleanup()

	if _, err := audited.CreateOne(context.Background(), account{ID: "a1", Balance: 1}); err != nil {
		b.Fatalf("seed failed: %v", err)
	}

	bump := func(a account) account {
		a.Balance++
		return a
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := audited.UpdateByID(context.Background(), "a1", bump); err != nil {
			b.Fatalf("UpdateByID failed: %v", err)
		}
	}
}
