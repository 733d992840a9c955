package goAudit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	internalaudit "github.com/MrEthical07/goAudit/internal/audit"
)

// entitySnapshot pairs one entity's serialized before/after images for a
// single audit record.
type entitySnapshot struct {
	id     string
	before json.RawMessage
	after  json.RawMessage
}

func actorValue(identity Identity) string {
	if identity.ID == "" {
		return UnknownActor
	}
	return identity.ID
}

func entityIDString[ID comparable](id ID) string {
	return fmt.Sprint(id)
}

// resolveActor runs the identity provider for the current call. A provider
// error fails the wrapped operation; a zero identity does not.
func (a *Audited[E, ID]) resolveActor(ctx context.Context) (string, error) {
	identity, err := a.identity.CurrentActor(ctx)
	if err != nil {
		return "", err
	}
	return actorValue(identity), nil
}

// snapshotOf serializes e for a record image. Failures are absorbed here:
// auditing must never fail the primary operation after the store committed.
func (a *Audited[E, ID]) snapshotOf(e E) (json.RawMessage, bool) {
	data, err := e.Snapshot()
	if err != nil {
		a.metricInc(MetricSnapshotFailure)
		log.Printf("goAudit: snapshot failed for %s entity %s: %v", a.config.EntityName, entityIDString(e.EntityID()), err)
		return nil, false
	}
	return json.RawMessage(data), true
}

// buildRecords stamps one shared actedAt so every record of one logical
// operation carries the same timestamp.
func (a *Audited[E, ID]) buildRecords(actor string, action Action, snapshots []entitySnapshot) []Record {
	if len(snapshots) == 0 {
		return nil
	}

	now := time.Now().UTC()
	records := make([]Record, 0, len(snapshots))
	for _, snap := range snapshots {
		records = append(records, Record{
			ActedAt:   now,
			Actor:     actor,
			Action:    action,
			Before:    snap.before,
			After:     snap.after,
			EntityID:  snap.id,
			ActedOn:   a.config.EntityName,
			ActionKey: a.config.ActionKey,
		})
	}
	return records
}

func actionMetric(action Action) (MetricID, bool) {
	switch action {
	case ActionInsertOne:
		return MetricInsertOneRecords, true
	case ActionInsertMany:
		return MetricInsertManyRecords, true
	case ActionUpdateOne:
		return MetricUpdateOneRecords, true
	case ActionUpdateMany:
		return MetricUpdateManyRecords, true
	case ActionDeleteOne:
		return MetricDeleteOneRecords, true
	case ActionDeleteMany:
		return MetricDeleteManyRecords, true
	}
	return 0, false
}

// dispatch acquires the sink on the caller's goroutine, then hands the
// batch to the background worker. Failures here are absorbed and logged
// with the serialized records so they stay recoverable by hand.
func (a *Audited[E, ID]) dispatch(ctx context.Context, action Action, records []Record) {
	if len(records) == 0 {
		return
	}
	if id, ok := actionMetric(action); ok {
		a.metricAdd(id, uint64(len(records)))
	}

	sink, err := a.source.AcquireSink(ctx)
	if err == nil && sink == nil {
		err = errors.New("sink source returned nil sink")
	}
	if err != nil {
		a.metricInc(MetricSinkAcquireFailure)
		log.Printf("goAudit: audit sink acquisition failed: %v payload=%s", err, internalaudit.PayloadString(records))
		return
	}

	a.metricInc(MetricBatchesDispatched)
	a.metricAdd(MetricRecordsDispatched, uint64(len(records)))
	a.dispatcher.Emit(ctx, sink, records)
}
