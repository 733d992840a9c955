// Package redistore provides a Redis-backed implementation of the goAudit
// store contract. Entities are stored as JSON blobs under prefixed keys,
// with a set index carrying the live identifiers so predicate queries can
// load the full collection without SCAN.
package redistore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	goAudit "github.com/MrEthical07/goAudit"
)

// ErrRedisUnavailable is an exported constant or variable used by the audit layer.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrIDMismatch is returned when a patch or replacement tries to change the
// identifier an entity is stored under.
var ErrIDMismatch = errors.New("entity id mismatch")

const defaultPrefix = "aud"

// Store is a Redis-backed entity store. Entities are encoded as JSON, so
// the entity type should be a value type whose zero value is decodable.
//
//	Docs: docs/store.md
type Store[E goAudit.Entity[ID], ID comparable] struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates an entity [Store] backed by the given Redis client.
// prefix sets the Redis key namespace; it defaults to "aud" when empty.
//
//	Docs: docs/store.md
func NewStore[E goAudit.Entity[ID], ID comparable](client redis.UniversalClient, prefix string) *Store[E, ID] {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store[E, ID]{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store[E, ID]) key(id ID) string {
	return s.prefix + ":" + fmt.Sprint(id)
}

func (s *Store[E, ID]) indexKey() string {
	return s.prefix + ":index"
}

func (s *Store[E, ID]) encode(entity E) ([]byte, error) {
	return json.Marshal(entity)
}

func (s *Store[E, ID]) decode(data []byte) (E, error) {
	var entity E
	if err := json.Unmarshal(data, &entity); err != nil {
		return entity, err
	}
	return entity, nil
}

// CreateOne stores one entity. Returns [goAudit.ErrDuplicateEntity] when
// the id is already taken.
//
//	Performance: 2 Redis commands (SETNX + SADD).
func (s *Store[E, ID]) CreateOne(ctx context.Context, entity E) (E, error) {
	var zero E

	data, err := s.encode(entity)
	if err != nil {
		return zero, err
	}

	id := entity.EntityID()
	ok, err := s.redis.SetNX(ctx, s.key(id), data, 0).Result()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return zero, goAudit.ErrDuplicateEntity
	}

	if err := s.redis.SAdd(ctx, s.indexKey(), fmt.Sprint(id)).Err(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return entity, nil
}

// CreateMany stores a batch of entities. Duplicate ids, against the store
// or within the batch, reject the whole call before anything is written.
//
// ATOMICITY NOTE: the existence check and the writes are separate round
// trips; a concurrent creator can slip between them. The duplicate check is
// best-effort, the write itself is a single MULTI/EXEC.
func (s *Store[E, ID]) CreateMany(ctx context.Context, entities []E) ([]E, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(entities))
	ids := make([]interface{}, 0, len(entities))
	blobs := make([][]byte, 0, len(entities))
	seen := make(map[ID]struct{}, len(entities))
	for _, entity := range entities {
		id := entity.EntityID()
		if _, dup := seen[id]; dup {
			return nil, goAudit.ErrDuplicateEntity
		}
		seen[id] = struct{}{}

		data, err := s.encode(entity)
		if err != nil {
			return nil, err
		}
		keys = append(keys, s.key(id))
		ids = append(ids, fmt.Sprint(id))
		blobs = append(blobs, data)
	}

	existing, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	for _, v := range existing {
		if v != nil {
			return nil, goAudit.ErrDuplicateEntity
		}
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			pipe.Set(ctx, key, blobs[i], 0)
		}
		pipe.SAdd(ctx, s.indexKey(), ids...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return entities, nil
}

// FindByID returns the entity stored under id, or [goAudit.ErrNotFound].
//
//	Performance: 1 Redis GET.
func (s *Store[E, ID]) FindByID(ctx context.Context, id ID) (E, error) {
	var zero E

	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, goAudit.ErrNotFound
		}
		return zero, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.decode(data)
}

// FindMany returns all entities matching the predicate. A nil predicate
// matches everything. Matching runs in-process over the decoded entities.
//
//	Performance: SMEMBERS + 1 MGET, plus an SREM when stale index entries
//	need reconciling.
func (s *Store[E, ID]) FindMany(ctx context.Context, match goAudit.Predicate[E]) ([]E, error) {
	ids, err := s.redis.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":" + id
	}

	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var out []E
	var stale []interface{}
	for i, v := range values {
		if v == nil {
			// Index can drift when keys vanish outside this store;
			// reconcile instead of failing the read.
			stale = append(stale, ids[i])
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		entity, err := s.decode([]byte(str))
		if err != nil {
			return nil, err
		}
		if match == nil || match(entity) {
			out = append(out, entity)
		}
	}

	if len(stale) > 0 {
		if err := s.redis.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return out, nil
}

// UpdateByID applies the patch to the entity stored under id and returns
// the updated entity. The patch must not change the entity's id.
//
// ATOMICITY NOTE: read-modify-write without CAS; concurrent writers to the
// same id are last-write-wins.
func (s *Store[E, ID]) UpdateByID(ctx context.Context, id ID, patch goAudit.Patch[E]) (E, error) {
	var zero E
	if patch == nil {
		return zero, goAudit.ErrNilPatch
	}

	current, err := s.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}

	updated := patch(current)
	if updated.EntityID() != id {
		return zero, ErrIDMismatch
	}

	data, err := s.encode(updated)
	if err != nil {
		return zero, err
	}
	if err := s.redis.Set(ctx, s.key(id), data, 0).Err(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return updated, nil
}

// UpdateMany applies the patch to every entity matching the predicate and
// returns the updated entities. An id-changing patch rejects the whole
// call before anything is written.
//
// ATOMICITY NOTE: the matching read and the batched write are separate
// round trips; the write itself is a single MULTI/EXEC.
func (s *Store[E, ID]) UpdateMany(ctx context.Context, patch goAudit.Patch[E], match goAudit.Predicate[E]) ([]E, error) {
	if patch == nil {
		return nil, goAudit.ErrNilPatch
	}

	matched, err := s.FindMany(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}

	updated := make([]E, 0, len(matched))
	blobs := make([][]byte, 0, len(matched))
	for _, entity := range matched {
		next := patch(entity)
		if next.EntityID() != entity.EntityID() {
			return nil, ErrIDMismatch
		}
		data, err := s.encode(next)
		if err != nil {
			return nil, err
		}
		updated = append(updated, next)
		blobs = append(blobs, data)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, entity := range updated {
			pipe.Set(ctx, s.key(entity.EntityID()), blobs[i], 0)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return updated, nil
}

// ReplaceByID swaps the entity stored under id for the replacement, whose
// id must equal the target id.
func (s *Store[E, ID]) ReplaceByID(ctx context.Context, id ID, replacement E) (E, error) {
	var zero E

	if replacement.EntityID() != id {
		return zero, ErrIDMismatch
	}

	exists, err := s.redis.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if exists == 0 {
		return zero, goAudit.ErrNotFound
	}

	data, err := s.encode(replacement)
	if err != nil {
		return zero, err
	}
	if err := s.redis.Set(ctx, s.key(id), data, 0).Err(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return replacement, nil
}

// DeleteByID removes the entity stored under id, or returns
// [goAudit.ErrNotFound].
//
//	Performance: 1 MULTI/EXEC (DEL + SREM).
func (s *Store[E, ID]) DeleteByID(ctx context.Context, id ID) error {
	var delCmd *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		delCmd = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), fmt.Sprint(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if delCmd.Val() == 0 {
		return goAudit.ErrNotFound
	}
	return nil
}

// DeleteMany removes every entity matching the predicate and reports how
// many were removed. Zero matches is a successful no-op.
func (s *Store[E, ID]) DeleteMany(ctx context.Context, match goAudit.Predicate[E]) (int64, error) {
	matched, err := s.FindMany(ctx, match)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 {
		return 0, nil
	}

	var delCmd *redis.IntCmd
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		keys := make([]string, 0, len(matched))
		ids := make([]interface{}, 0, len(matched))
		for _, entity := range matched {
			keys = append(keys, s.key(entity.EntityID()))
			ids = append(ids, fmt.Sprint(entity.EntityID()))
		}
		delCmd = pipe.Del(ctx, keys...)
		pipe.SRem(ctx, s.indexKey(), ids...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return delCmd.Val(), nil
}
