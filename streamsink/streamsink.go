// Package streamsink appends audit records to a Redis Stream, giving the
// trail a durable, fan-out-friendly transport that downstream consumers can
// tail with consumer groups.
package streamsink

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

const defaultStream = "goaudit:records"

// Sink writes one stream entry per audit record. A few fields are flattened
// into entry values so consumers can filter without decoding the payload.
//
//	Docs: docs/sinks.md
type Sink struct {
	redis  redis.UniversalClient
	stream string
	maxLen int64
}

var _ goAudit.Sink = (*Sink)(nil)

// Option configures a [Sink] at construction.
type Option func(*Sink)

// WithMaxLen caps the stream length using approximate trimming
// (XADD MAXLEN ~). Zero leaves the stream unbounded.
func WithMaxLen(maxLen int64) Option {
	return func(s *Sink) {
		s.maxLen = maxLen
	}
}

// New creates a [Sink] appending to the given stream key; the key defaults
// to "goaudit:records" when empty.
func New(client redis.UniversalClient, stream string, opts ...Option) *Sink {
	if stream == "" {
		stream = defaultStream
	}
	s := &Sink{
		redis:  client,
		stream: stream,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stream reports the stream key this sink appends to.
func (s *Sink) Stream() string {
	return s.stream
}

func (s *Sink) entryValues(record goAudit.Record) (map[string]interface{}, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"action":    string(record.Action),
		"actor":     record.Actor,
		"entityId":  record.EntityID,
		"actedOn":   record.ActedOn,
		"actionKey": record.ActionKey,
		"record":    payload,
	}, nil
}

func (s *Sink) addArgs(values map[string]interface{}) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}
}

// Append describes the append operation and its observable behavior.
//
// Append may return an error when input validation, dependency calls, or security checks fail.
// Append does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Sink) Append(ctx context.Context, record goAudit.Record) error {
	values, err := s.entryValues(record)
	if err != nil {
		return err
	}
	if err := s.redis.XAdd(ctx, s.addArgs(values)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
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

	entries := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		values, err := s.entryValues(record)
		if err != nil {
			return err
		}
		entries = append(entries, values)
	}

	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, values := range entries {
			pipe.XAdd(ctx, s.addArgs(values))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
