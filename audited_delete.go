package goAudit

import "context"

// DeleteByID describes the deletebyid operation and its observable behavior.
//
// DeleteByID may return an error when input validation, dependency calls, or security checks fail.
// DeleteByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) DeleteByID(ctx context.Context, id ID) error {
	if !a.AuditEnabled() {
		return a.store.DeleteByID(ctx, id)
	}

	actor, err := a.resolveActor(ctx)
	if err != nil {
		return err
	}

	before, err := a.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	beforeSnap, beforeOK := a.snapshotOf(before)

	if err := a.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	if beforeOK {
		records := a.buildRecords(actor, ActionDeleteOne, []entitySnapshot{{
			id:     entityIDString(before.EntityID()),
			before: beforeSnap,
		}})
		a.dispatch(ctx, ActionDeleteOne, records)
	}

	return nil
}

// DeleteMany describes the deletemany operation and its observable behavior.
//
// DeleteMany may return an error when input validation, dependency calls, or security checks fail.
// DeleteMany does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) DeleteMany(ctx context.Context, match Predicate[E]) (int64, error) {
	if !a.AuditEnabled() {
		return a.store.DeleteMany(ctx, match)
	}

	actor, err := a.resolveActor(ctx)
	if err != nil {
		return 0, err
	}

	matched, err := a.store.FindMany(ctx, match)
	if err != nil {
		return 0, err
	}

	snapshots := make([]entitySnapshot, 0, len(matched))
	for _, entity := range matched {
		snap, ok := a.snapshotOf(entity)
		if !ok {
			continue
		}
		snapshots = append(snapshots, entitySnapshot{
			id:     entityIDString(entity.EntityID()),
			before: snap,
		})
	}

	deleted, err := a.store.DeleteMany(ctx, match)
	if err != nil {
		return deleted, err
	}

	// Records cover the originally matched set even when a concurrent
	// writer removed some of them between the read and the delete.
	records := a.buildRecords(actor, ActionDeleteMany, snapshots)
	a.dispatch(ctx, ActionDeleteMany, records)

	return deleted, nil
}
