// Package middleware exposes HTTP middleware adapters that carry audit actor
// identity from incoming requests into the request context read by goAudit.
//
// # Adapters
//
//   - [Actor] — annotates the context with the bearer token and resolved actor, never rejects.
//   - [RequireActor] — same annotation, but rejects requests whose actor cannot be resolved.
//
// Each adapter reads the Authorization header, consults the configured
// identity provider, and injects the outcome into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into context values. It does NOT
// implement identity logic itself — all decisions are delegated to the
// configured goAudit.IdentityProvider.
//
// # What this package must NOT do
//
//   - Parse or create credentials directly (delegates to the provider).
//   - Touch the audited store or any sink.
//   - Make authorization decisions beyond pass/reject from the provider.
package middleware
