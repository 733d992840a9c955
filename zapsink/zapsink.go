// Package zapsink emits audit records through a zap logger, turning the
// trail into structured log events for deployments whose log pipeline is
// already the system of record.
package zapsink

import (
	"context"

	"go.uber.org/zap"

	goAudit "github.com/MrEthical07/goAudit"
)

const defaultMessage = "audit record"

// Sink logs one entry per audit record at Info level. Before and after
// images are attached as raw JSON fields when present.
//
//	Docs: docs/sinks.md
type Sink struct {
	logger  *zap.Logger
	message string
}

var _ goAudit.Sink = (*Sink)(nil)

// Option configures a [Sink] at construction.
type Option func(*Sink)

// WithMessage overrides the log message used for every record entry.
func WithMessage(message string) Option {
	return func(s *Sink) {
		s.message = message
	}
}

// New creates a [Sink] writing through logger under the "goaudit" name.
// A nil logger falls back to [zap.NewNop].
func New(logger *zap.Logger, opts ...Option) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sink{
		logger:  logger.Named("goaudit"),
		message: defaultMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) fields(record goAudit.Record) []zap.Field {
	fields := []zap.Field{
		zap.Time("actedAt", record.ActedAt),
		zap.String("actor", record.Actor),
		zap.String("action", string(record.Action)),
		zap.String("entityId", record.EntityID),
		zap.String("actedOn", record.ActedOn),
		zap.String("actionKey", record.ActionKey),
	}
	if len(record.Before) > 0 {
		fields = append(fields, zap.ByteString("before", record.Before))
	}
	if len(record.After) > 0 {
		fields = append(fields, zap.ByteString("after", record.After))
	}
	return fields
}

// Append describes the append operation and its observable behavior.
//
// Append may return an error when input validation, dependency calls, or security checks fail.
// Append does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Sink) Append(_ context.Context, record goAudit.Record) error {
	s.logger.Info(s.message, s.fields(record)...)
	return nil
}

// AppendBatch describes the appendbatch operation and its observable behavior.
//
// AppendBatch may return an error when input validation, dependency calls, or security checks fail.
// AppendBatch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Sink) AppendBatch(ctx context.Context, records []goAudit.Record) error {
	for _, record := range records {
		if err := s.Append(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
