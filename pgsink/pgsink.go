// Package pgsink persists audit records to PostgreSQL, one row per record,
// for deployments that want the trail queryable with SQL next to the data
// it describes.
package pgsink

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	goAudit "github.com/MrEthical07/goAudit"
)

// Schema is the DDL for the default audit table. Deployments that manage
// migrations elsewhere can inline it; [Sink.EnsureSchema] applies it
// directly.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id UUID PRIMARY KEY,
	acted_at TIMESTAMPTZ NOT NULL,
	actor TEXT NOT NULL,
	action TEXT NOT NULL,
	before JSONB,
	after JSONB,
	entity_id TEXT NOT NULL,
	acted_on TEXT NOT NULL,
	action_key TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_records_entity_idx
	ON audit_records (acted_on, entity_id, acted_at DESC);
`

const insertSQL = `
	INSERT INTO audit_records (id, acted_at, actor, action, before, after, entity_id, acted_on, action_key)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Entry is one stored audit row: the sink-assigned identity plus the
// record as dispatched.
type Entry struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Record    goAudit.Record
}

// Sink writes audit records into PostgreSQL through a pgx pool.
//
//	Docs: docs/sinks.md
type Sink struct {
	pool *pgxpool.Pool
}

var _ goAudit.Sink = (*Sink)(nil)

// New creates a [Sink] writing through the given pool.
func New(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// EnsureSchema applies [Schema]. It is idempotent.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// Append describes the append operation and its observable behavior.
//
// Append may return an error when input validation, dependency calls, or security checks fail.
// Append does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Sink) Append(ctx context.Context, record goAudit.Record) error {
	_, err := s.pool.Exec(ctx, insertSQL,
		uuid.New(),
		record.ActedAt,
		record.Actor,
		string(record.Action),
		[]byte(record.Before),
		[]byte(record.After),
		record.EntityID,
		record.ActedOn,
		record.ActionKey,
	)
	if err != nil {
		return fmt.Errorf("pgsink append: %w", err)
	}
	return nil
}

// AppendBatch describes the appendbatch operation and its observable behavior.
//
// AppendBatch may return an error when input validation, dependency calls, or security checks fail.
// AppendBatch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Sink) AppendBatch(ctx context.Context, records []goAudit.Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(insertSQL,
			uuid.New(),
			record.ActedAt,
			record.Actor,
			string(record.Action),
			[]byte(record.Before),
			[]byte(record.After),
			record.EntityID,
			record.ActedOn,
			record.ActionKey,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("pgsink append batch: %w", err)
		}
	}
	return results.Close()
}

// ListByEntity returns stored rows for one entity, newest first. limit
// defaults to 50 when not positive.
//
//	Docs: docs/sinks.md
func (s *Sink) ListByEntity(ctx context.Context, actedOn, entityID string, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, acted_at, actor, action, before, after, entity_id, acted_on, action_key, created_at
		FROM audit_records WHERE acted_on = $1 AND entity_id = $2
		ORDER BY acted_at DESC LIMIT $3 OFFSET $4
	`, actedOn, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var action string
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.Record.ActedAt, &e.Record.Actor, &action, &before, &after, &e.Record.EntityID, &e.Record.ActedOn, &e.Record.ActionKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Record.Action = goAudit.Action(action)
		e.Record.Before = before
		e.Record.After = after
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
