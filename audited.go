package goAudit

import (
	"context"
	"time"

	internalaudit "github.com/MrEthical07/goAudit/internal/audit"
)

// Audited defines a public type used by goAudit APIs.
//
// Audited instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Audited[E Entity[ID], ID comparable] struct {
	config     Config
	store      Store[E, ID]
	identity   IdentityProvider
	source     SinkSource
	dispatcher *internalaudit.Dispatcher
	metrics    *Metrics
}

// AuditEnabled reports whether this wrapper records audit trails. It is
// false exactly when no [IdentityProvider] was configured, in which case
// every operation is a plain delegation to the underlying store.
func (a *Audited[E, ID]) AuditEnabled() bool {
	return a != nil && a.identity != nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) Close() {
	if a == nil {
		return
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) AuditDropped() uint64 {
	if a == nil || a.dispatcher == nil {
		return 0
	}
	return a.dispatcher.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) MetricsSnapshot() MetricsSnapshot {
	if a == nil || a.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return a.metrics.Snapshot()
}

func (a *Audited[E, ID]) metricInc(id MetricID) {
	if a == nil || a.metrics == nil {
		return
	}
	a.metrics.Inc(id)
}

func (a *Audited[E, ID]) metricAdd(id MetricID, n uint64) {
	if a == nil || a.metrics == nil {
		return
	}
	a.metrics.Add(id, n)
}

func (a *Audited[E, ID]) observeAppend(_ int, d time.Duration, err error) {
	if a == nil || a.metrics == nil {
		return
	}
	a.metrics.Observe(MetricAppendLatency, d)
	if err != nil {
		a.metrics.Inc(MetricAppendFailure)
		return
	}
	a.metrics.Inc(MetricAppendSuccess)
}

// FindByID describes the findbyid operation and its observable behavior.
//
// FindByID may return an error when input validation, dependency calls, or security checks fail.
// FindByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) FindByID(ctx context.Context, id ID) (E, error) {
	return a.store.FindByID(ctx, id)
}

// FindMany describes the findmany operation and its observable behavior.
//
// FindMany may return an error when input validation, dependency calls, or security checks fail.
// FindMany does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) FindMany(ctx context.Context, match Predicate[E]) ([]E, error) {
	return a.store.FindMany(ctx, match)
}
