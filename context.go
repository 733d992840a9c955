package goAudit

import "context"

type actorIDContextKey struct{}
type bearerTokenContextKey struct{}

// WithActorID attaches the acting principal's identifier to ctx. The
// [ContextProvider] resolves it when building audit records; HTTP
// middleware typically sets it once per request after authentication.
//
//	Docs: docs/identity.md
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDContextKey{}, actorID)
}

// WithBearerToken attaches a raw bearer token to ctx so token-backed
// identity providers can resolve the actor lazily, on the audited call
// path rather than at transport level.
//
//	Docs: docs/identity.md
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenContextKey{}, token)
}

// ActorIDFromContext returns the actor identifier set by [WithActorID]
// and whether one was present.
func ActorIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	actorID, _ := ctx.Value(actorIDContextKey{}).(string)
	if actorID == "" {
		return "", false
	}

	return actorID, true
}

// BearerTokenFromContext returns the token set by [WithBearerToken] and
// whether one was present.
func BearerTokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	token, _ := ctx.Value(bearerTokenContextKey{}).(string)
	if token == "" {
		return "", false
	}

	return token, true
}
