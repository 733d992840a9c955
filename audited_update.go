package goAudit

import (
	"context"
	"encoding/json"
)

// UpdateByID describes the updatebyid operation and its observable behavior.
//
// UpdateByID may return an error when input validation, dependency calls, or security checks fail.
// UpdateByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) UpdateByID(ctx context.Context, id ID, patch Patch[E]) (E, error) {
	if !a.AuditEnabled() {
		return a.store.UpdateByID(ctx, id, patch)
	}

	actor, err := a.resolveActor(ctx)
	if err != nil {
		var zero E
		return zero, err
	}

	before, err := a.store.FindByID(ctx, id)
	if err != nil {
		var zero E
		return zero, err
	}
	beforeSnap, beforeOK := a.snapshotOf(before)

	updated, err := a.store.UpdateByID(ctx, id, patch)
	if err != nil {
		return updated, err
	}

	a.recordUpdateOne(ctx, actor, updated, beforeSnap, beforeOK)
	return updated, nil
}

// ReplaceByID describes the replacebyid operation and its observable behavior.
//
// ReplaceByID may return an error when input validation, dependency calls, or security checks fail.
// ReplaceByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) ReplaceByID(ctx context.Context, id ID, replacement E) (E, error) {
	if !a.AuditEnabled() {
		return a.store.ReplaceByID(ctx, id, replacement)
	}

	actor, err := a.resolveActor(ctx)
	if err != nil {
		var zero E
		return zero, err
	}

	before, err := a.store.FindByID(ctx, id)
	if err != nil {
		var zero E
		return zero, err
	}
	beforeSnap, beforeOK := a.snapshotOf(before)

	replaced, err := a.store.ReplaceByID(ctx, id, replacement)
	if err != nil {
		return replaced, err
	}

	// Replace is audit-equivalent to an in-place update of the same id.
	a.recordUpdateOne(ctx, actor, replaced, beforeSnap, beforeOK)
	return replaced, nil
}

func (a *Audited[E, ID]) recordUpdateOne(ctx context.Context, actor string, updated E, beforeSnap json.RawMessage, beforeOK bool) {
	afterSnap, afterOK := a.snapshotOf(updated)
	if !afterOK {
		return
	}

	snapshot := entitySnapshot{
		id:    entityIDString(updated.EntityID()),
		after: afterSnap,
	}
	if beforeOK {
		snapshot.before = beforeSnap
	}

	records := a.buildRecords(actor, ActionUpdateOne, []entitySnapshot{snapshot})
	a.dispatch(ctx, ActionUpdateOne, records)
}

// UpdateMany describes the updatemany operation and its observable behavior.
//
// UpdateMany may return an error when input validation, dependency calls, or security checks fail.
// UpdateMany does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) UpdateMany(ctx context.Context, patch Patch[E], match Predicate[E]) ([]E, error) {
	if !a.AuditEnabled() {
		return a.store.UpdateMany(ctx, patch, match)
	}

	actor, err := a.resolveActor(ctx)
	if err != nil {
		return nil, err
	}

	matched, err := a.store.FindMany(ctx, match)
	if err != nil {
		return nil, err
	}

	beforeSnaps := make(map[ID]json.RawMessage, len(matched))
	for _, entity := range matched {
		if snap, ok := a.snapshotOf(entity); ok {
			beforeSnaps[entity.EntityID()] = snap
		}
	}

	updated, err := a.store.UpdateMany(ctx, patch, match)
	if err != nil {
		return updated, err
	}

	// Post-state comes from the mutation's own return value, so records are
	// paired by identifier even when the patch changes fields the predicate
	// matched on.
	snapshots := make([]entitySnapshot, 0, len(updated))
	for _, entity := range updated {
		afterSnap, ok := a.snapshotOf(entity)
		if !ok {
			continue
		}

		snapshot := entitySnapshot{
			id:    entityIDString(entity.EntityID()),
			after: afterSnap,
		}
		if before, ok := beforeSnaps[entity.EntityID()]; ok {
			snapshot.before = before
		} else {
			a.metricInc(MetricPairingMissingBefore)
		}
		snapshots = append(snapshots, snapshot)
	}

	records := a.buildRecords(actor, ActionUpdateMany, snapshots)
	a.dispatch(ctx, ActionUpdateMany, records)

	return updated, nil
}
