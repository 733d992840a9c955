package goAudit

import "context"

// ProviderFunc adapts a plain function to the [IdentityProvider] interface.
type ProviderFunc func(ctx context.Context) (Identity, error)

// CurrentActor describes the currentactor operation and its observable behavior.
//
// CurrentActor may return an error when input validation, dependency calls, or security checks fail.
// CurrentActor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f ProviderFunc) CurrentActor(ctx context.Context) (Identity, error) {
	return f(ctx)
}

// StaticProvider returns an [IdentityProvider] that resolves every call to
// the fixed actor id. Useful for batch jobs and other system-initiated
// mutations that should be attributed to a service principal.
//
//	Docs: docs/identity.md
func StaticProvider(actorID string) IdentityProvider {
	return ProviderFunc(func(context.Context) (Identity, error) {
		return Identity{ID: actorID}, nil
	})
}

// ContextProvider resolves the actor from the value set by [WithActorID].
// Calls without an actor in ctx resolve to the zero [Identity], so their
// records are attributed to [UnknownActor] instead of failing.
//
//	Docs: docs/identity.md
type ContextProvider struct{}

// CurrentActor describes the currentactor operation and its observable behavior.
//
// CurrentActor may return an error when input validation, dependency calls, or security checks fail.
// CurrentActor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (ContextProvider) CurrentActor(ctx context.Context) (Identity, error) {
	actorID, ok := ActorIDFromContext(ctx)
	if !ok {
		return Identity{}, nil
	}
	return Identity{ID: actorID}, nil
}
