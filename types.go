package goAudit

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goAudit/internal/audit"
	internalmetrics "github.com/MrEthical07/goAudit/internal/metrics"
)

// Entity is the contract an entity type must satisfy before a store for it
// can be wrapped. EntityID returns the stable identifier used for lookups
// and recorded on audit records; Snapshot returns the serialized state
// captured in the before/after images of a record.
//
//	Docs: docs/entity.md
type Entity[ID comparable] interface {
	EntityID() ID
	Snapshot() ([]byte, error)
}

// Predicate selects entities for the query-scoped operations FindMany,
// UpdateMany and DeleteMany. A nil Predicate matches every entity.
type Predicate[E any] func(E) bool

// Patch produces the next state of an entity during UpdateByID and
// UpdateMany. Implementations must treat the argument as a value and
// return the modified copy.
type Patch[E any] func(E) E

// Store is the persistence interface wrapped by [Audited]. Every method on
// [Audited] delegates to the method of the same name here; implementations
// decide identifier assignment, matching cost, and transactional behavior.
//
// Implementations should return [ErrNotFound] (possibly wrapped) from
// FindByID, UpdateByID, ReplaceByID and DeleteByID when no entity carries
// the given id, and [ErrDuplicateEntity] from the create methods when the
// id is already taken.
//
//	Docs: docs/store.md
type Store[E Entity[ID], ID comparable] interface {
	CreateOne(ctx context.Context, entity E) (E, error)
	CreateMany(ctx context.Context, entities []E) ([]E, error)
	FindByID(ctx context.Context, id ID) (E, error)
	FindMany(ctx context.Context, match Predicate[E]) ([]E, error)
	UpdateByID(ctx context.Context, id ID, patch Patch[E]) (E, error)
	UpdateMany(ctx context.Context, patch Patch[E], match Predicate[E]) ([]E, error)
	ReplaceByID(ctx context.Context, id ID, replacement E) (E, error)
	DeleteByID(ctx context.Context, id ID) error
	DeleteMany(ctx context.Context, match Predicate[E]) (int64, error)
}

// Identity is the resolved acting principal attributed on audit records.
// A zero Identity means no principal could be determined; records built
// from it carry [UnknownActor] instead of an empty string.
//
//	Docs: docs/identity.md
type Identity struct {
	ID string
}

// IdentityProvider resolves the acting principal for the current call.
// Configuring one on the builder is what switches auditing on: a wrapper
// built without a provider performs no extra reads, snapshots, or sink
// work beyond delegating to the underlying store.
//
// Returning an error fails the wrapped operation; returning a zero
// [Identity] with a nil error records the action against [UnknownActor].
//
//	Docs: docs/identity.md
type IdentityProvider interface {
	CurrentActor(ctx context.Context) (Identity, error)
}

// Record is a single immutable audit record describing one observed
// mutation of one entity.
//
//	Docs: docs/records.md
type Record = internalaudit.Record

// Action is the mutation class recorded on a [Record].
//
//	Docs: docs/records.md
type Action = internalaudit.Action

const (
	// ActionInsertOne is an exported constant or variable used by the audit layer.
	ActionInsertOne = internalaudit.ActionInsertOne
	// ActionInsertMany is an exported constant or variable used by the audit layer.
	ActionInsertMany = internalaudit.ActionInsertMany
	// ActionUpdateOne is an exported constant or variable used by the audit layer.
	ActionUpdateOne = internalaudit.ActionUpdateOne
	// ActionUpdateMany is an exported constant or variable used by the audit layer.
	ActionUpdateMany = internalaudit.ActionUpdateMany
	// ActionDeleteOne is an exported constant or variable used by the audit layer.
	ActionDeleteOne = internalaudit.ActionDeleteOne
	// ActionDeleteMany is an exported constant or variable used by the audit layer.
	ActionDeleteMany = internalaudit.ActionDeleteMany

	// UnknownActor is an exported constant or variable used by the audit layer.
	UnknownActor = internalaudit.UnknownActor
)

// Sink receives audit records. Append delivers a single record and
// AppendBatch the group produced by one bulk operation; both run on the
// dispatch worker, never on the caller's goroutine. Errors are absorbed
// and logged together with the serialized records.
//
//	Docs: docs/sinks.md
type Sink = internalaudit.Sink

// SinkSource hands out the [Sink] for each dispatched operation, so sinks
// can be backed by pooled connections or per-call routing rather than a
// fixed value. Acquisition runs on the caller's goroutine with the
// caller's context.
//
//	Docs: docs/sinks.md
type SinkSource = internalaudit.Source

// NoOpSink is a [Sink] that silently discards all records.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-backed [Sink], mainly a capture aid
// for tests. Appends block once the buffer is full.
//
//	Docs: docs/sinks.md
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is a [Sink] that writes one JSON document per record,
// newline separated, to an [io.Writer].
//
//	Docs: docs/sinks.md
type JSONWriterSink = internalaudit.JSONWriterSink

// StaticSink wraps a fixed [Sink] in a [SinkSource] that always returns it.
//
//	Docs: docs/sinks.md
func StaticSink(sink Sink) SinkSource {
	return internalaudit.StaticSource(sink)
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
//
//	Docs: docs/sinks.md
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
//
//	Docs: docs/sinks.md
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
//
//	Docs: docs/metrics.md
type MetricID = internalmetrics.MetricID

const (
	// MetricInsertOneRecords is an exported constant or variable used by the audit layer.
	MetricInsertOneRecords = MetricID(internalmetrics.MetricInsertOneRecords)
	// MetricInsertManyRecords is an exported constant or variable used by the audit layer.
	MetricInsertManyRecords = MetricID(internalmetrics.MetricInsertManyRecords)
	// MetricUpdateOneRecords is an exported constant or variable used by the audit layer.
	MetricUpdateOneRecords = MetricID(internalmetrics.MetricUpdateOneRecords)
	// MetricUpdateManyRecords is an exported constant or variable used by the audit layer.
	MetricUpdateManyRecords = MetricID(internalmetrics.MetricUpdateManyRecords)
	// MetricDeleteOneRecords is an exported constant or variable used by the audit layer.
	MetricDeleteOneRecords = MetricID(internalmetrics.MetricDeleteOneRecords)
	// MetricDeleteManyRecords is an exported constant or variable used by the audit layer.
	MetricDeleteManyRecords = MetricID(internalmetrics.MetricDeleteManyRecords)
	// MetricRecordsDispatched is an exported constant or variable used by the audit layer.
	MetricRecordsDispatched = MetricID(internalmetrics.MetricRecordsDispatched)
	// MetricBatchesDispatched is an exported constant or variable used by the audit layer.
	MetricBatchesDispatched = MetricID(internalmetrics.MetricBatchesDispatched)
	// MetricAppendSuccess is an exported constant or variable used by the audit layer.
	MetricAppendSuccess = MetricID(internalmetrics.MetricAppendSuccess)
	// MetricAppendFailure is an exported constant or variable used by the audit layer.
	MetricAppendFailure = MetricID(internalmetrics.MetricAppendFailure)
	// MetricSinkAcquireFailure is an exported constant or variable used by the audit layer.
	MetricSinkAcquireFailure = MetricID(internalmetrics.MetricSinkAcquireFailure)
	// MetricSnapshotFailure is an exported constant or variable used by the audit layer.
	MetricSnapshotFailure = MetricID(internalmetrics.MetricSnapshotFailure)
	// MetricPairingMissingBefore is an exported constant or variable used by the audit layer.
	MetricPairingMissingBefore = MetricID(internalmetrics.MetricPairingMissingBefore)
	// MetricAppendLatency is an exported constant or variable used by the audit layer.
	MetricAppendLatency = MetricID(internalmetrics.MetricAppendLatency)
)

// Metrics holds atomic counters and optional latency histograms.
//
//	Docs: docs/metrics.md
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
//
//	Docs: docs/metrics.md
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
//
//	Docs: docs/metrics.md
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
