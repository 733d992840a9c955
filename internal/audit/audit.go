package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// UnknownActor is the wire value recorded when no acting principal could be
// resolved. The persisted schema keeps this sentinel for compatibility;
// callers should treat an empty resolved identity as "unknown" and never
// write "" into a record.
const UnknownActor = "0"

// Action tags both the kind of a mutation and its singular/plural cardinality.
type Action string

const (
	// ActionInsertOne is an exported constant or variable used by the audit layer.
	ActionInsertOne Action = "INSERT_ONE"
	// ActionInsertMany is an exported constant or variable used by the audit layer.
	ActionInsertMany Action = "INSERT_MANY"
	// ActionUpdateOne is an exported constant or variable used by the audit layer.
	ActionUpdateOne Action = "UPDATE_ONE"
	// ActionUpdateMany is an exported constant or variable used by the audit layer.
	ActionUpdateMany Action = "UPDATE_MANY"
	// ActionDeleteOne is an exported constant or variable used by the audit layer.
	ActionDeleteOne Action = "DELETE_ONE"
	// ActionDeleteMany is an exported constant or variable used by the audit layer.
	ActionDeleteMany Action = "DELETE_MANY"
)

// Record is the canonical audit record model used by internal dispatching and
// root APIs. Records are write-once: the decorator constructs them, a Sink
// owns them afterwards. Field names in the JSON form are a stable schema.
type Record struct {
	ActedAt   time.Time       `json:"actedAt"`
	Actor     string          `json:"actor"`
	Action    Action          `json:"action"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	EntityID  string          `json:"entityId"`
	ActedOn   string          `json:"actedOn"`
	ActionKey string          `json:"actionKey"`
}

// Sink receives dispatched audit records. Append and AppendBatch may fail;
// delivery failure is absorbed by the dispatcher and never reaches the
// caller of a decorated operation.
type Sink interface {
	Append(ctx context.Context, record Record) error
	AppendBatch(ctx context.Context, records []Record) error
}

// Source yields a Sink handle per dispatch. Acquisition runs on the caller's
// path and may block on ctx; acquisition failure is absorbed like any other
// audit-path failure.
type Source interface {
	AcquireSink(ctx context.Context) (Sink, error)
}

type staticSource struct {
	sink Sink
}

// StaticSource adapts an already-constructed Sink into a Source whose
// acquisition never blocks and never fails.
func StaticSource(sink Sink) Source {
	return staticSource{sink: sink}
}

func (s staticSource) AcquireSink(context.Context) (Sink, error) {
	return s.sink, nil
}

// NoOpSink drops audit records.
type NoOpSink struct{}

func (NoOpSink) Append(context.Context, Record) error { return nil }

func (NoOpSink) AppendBatch(context.Context, []Record) error { return nil }

// ChannelSink writes audit records into a buffered channel. Intended for
// consumers that drain Records continuously; an undrained full channel
// blocks delivery until ctx is done.
type ChannelSink struct {
	records chan Record
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		records: make(chan Record, buffer),
	}
}

func (s *ChannelSink) Append(ctx context.Context, record Record) error {
	select {
	case s.records <- record:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChannelSink) AppendBatch(ctx context.Context, records []Record) error {
	for _, record := range records {
		if err := s.Append(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (s *ChannelSink) Records() <-chan Record {
	return s.records
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Append(ctx context.Context, record Record) error {
	return s.AppendBatch(ctx, []Record{record})
}

func (s *JSONWriterSink) AppendBatch(_ context.Context, records []Record) error {
	if s == nil || s.writer == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if _, err := s.writer.Write(data); err != nil {
			return err
		}
		if _, err := s.writer.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}
