// Package goAudit provides a generic audit-interception layer: a decorator
// that wraps any entity store and records an immutable trail of who changed
// what, when, and its before/after state — without changing the wrapped
// store's contract or blocking its callers on audit delivery.
//
// The package is designed for concurrent server workloads: Audited methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goAudit is the public surface. It exposes [Audited], [Builder], [Config],
// the [Store] and [Sink] capability interfaces, and value types (Record,
// MetricsSnapshot, etc.). All internal coordination — record buffering,
// background delivery, metrics storage — lives under internal/ and is never
// exported directly.
//
// # What this package must NOT do
//
//   - Await sink delivery on the caller's path, or surface sink failures to
//     the caller of a store operation.
//   - Mutate, retry, or reorder records after construction; the sink owns
//     them once dispatched.
//   - Import any sub-package that re-imports goAudit (no import cycles).
//
// # Performance contract
//
// A wrapper built without an identity provider adds only a branch and a
// delegated call per operation. With auditing enabled, the caller pays for
// actor resolution, the pre-read where the operation needs one, snapshot
// serialization, and sink-handle acquisition; append latency is never on
// the caller's path.
package goAudit
