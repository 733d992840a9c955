package internaldefs

import (
	goAudit "github.com/MrEthical07/goAudit"
)

// CounterDef defines a public type used by goAudit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goAudit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goAudit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goAudit.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the audit layer.
var CounterDefs = []CounterDef{
	{ID: goAudit.MetricInsertOneRecords, Name: "goaudit_insert_one_records_total", Help: "Audit records generated by single-entity inserts."},
	{ID: goAudit.MetricInsertManyRecords, Name: "goaudit_insert_many_records_total", Help: "Audit records generated by bulk inserts."},
	{ID: goAudit.MetricUpdateOneRecords, Name: "goaudit_update_one_records_total", Help: "Audit records generated by single-entity updates."},
	{ID: goAudit.MetricUpdateManyRecords, Name: "goaudit_update_many_records_total", Help: "Audit records generated by bulk updates."},
	{ID: goAudit.MetricDeleteOneRecords, Name: "goaudit_delete_one_records_total", Help: "Audit records generated by single-entity deletes."},
	{ID: goAudit.MetricDeleteManyRecords, Name: "goaudit_delete_many_records_total", Help: "Audit records generated by bulk deletes."},
	{ID: goAudit.MetricRecordsDispatched, Name: "goaudit_records_dispatched_total", Help: "Audit records handed to the dispatcher."},
	{ID: goAudit.MetricBatchesDispatched, Name: "goaudit_batches_dispatched_total", Help: "Audit record batches handed to the dispatcher."},
	{ID: goAudit.MetricAppendSuccess, Name: "goaudit_append_success_total", Help: "Sink deliveries that succeeded."},
	{ID: goAudit.MetricAppendFailure, Name: "goaudit_append_failure_total", Help: "Sink deliveries that failed."},
	{ID: goAudit.MetricSinkAcquireFailure, Name: "goaudit_sink_acquire_failure_total", Help: "Failed audit sink acquisitions."},
	{ID: goAudit.MetricSnapshotFailure, Name: "goaudit_snapshot_failure_total", Help: "Entity snapshot serializations that failed."},
	{ID: goAudit.MetricPairingMissingBefore, Name: "goaudit_pairing_missing_before_total", Help: "Bulk update records emitted without a matched pre-image."},
}

// HistogramDefs is an exported constant or variable used by the audit layer.
var HistogramDefs = []HistogramDef{
	{ID: goAudit.MetricAppendLatency, Name: "goaudit_append_latency_seconds", Help: "Sink append latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the audit layer.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
