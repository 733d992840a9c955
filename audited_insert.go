package goAudit

import "context"

// CreateOne describes the createone operation and its observable behavior.
//
// CreateOne may return an error when input validation, dependency calls, or security checks fail.
// CreateOne does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) CreateOne(ctx context.Context, entity E) (E, error) {
	created, err := a.store.CreateOne(ctx, entity)
	if err != nil {
		return created, err
	}
	if !a.AuditEnabled() {
		return created, nil
	}

	actor, err := a.resolveActor(ctx)
	if err != nil {
		// The insert committed before actor resolution ran; the error still
		// propagates and the write is not rolled back.
		var zero E
		return zero, err
	}

	if snap, ok := a.snapshotOf(created); ok {
		records := a.buildRecords(actor, ActionInsertOne, []entitySnapshot{{
			id:    entityIDString(created.EntityID()),
			after: snap,
		}})
		a.dispatch(ctx, ActionInsertOne, records)
	}

	return created, nil
}

// CreateMany describes the createmany operation and its observable behavior.
//
// CreateMany may return an error when input validation, dependency calls, or security checks fail.
// CreateMany does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *Audited[E, ID]) CreateMany(ctx context.Context, entities []E) ([]E, error) {
	created, err := a.store.CreateMany(ctx, entities)
	if err != nil {
		return created, err
	}
	if !a.AuditEnabled() || len(created) == 0 {
		return created, nil
	}

	actor, err := a.resolveActor(ctx)
	if err != nil {
		// Same asymmetry as CreateOne: the bulk insert already committed.
		return nil, err
	}

	snapshots := make([]entitySnapshot, 0, len(created))
	for _, entity := range created {
		snap, ok := a.snapshotOf(entity)
		if !ok {
			continue
		}
		snapshots = append(snapshots, entitySnapshot{
			id:    entityIDString(entity.EntityID()),
			after: snap,
		})
	}

	records := a.buildRecords(actor, ActionInsertMany, snapshots)
	a.dispatch(ctx, ActionInsertMany, records)

	return created, nil
}
