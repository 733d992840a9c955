// Package audit implements the audit record model and async batch dispatching.
//
// # Components
//
//   - [Record] — immutable audit record: actor, action, before/after snapshots, entity id.
//   - [Sink] — interface for record consumers (channel, JSON writer, no-op).
//   - [Source] — per-dispatch sink acquisition; [StaticSource] wraps a fixed sink.
//   - [Dispatcher] — buffered async relay with drop-if-full / block-if-full semantics.
//
// # Architecture boundaries
//
// This package owns record buffering and sink delivery. It does NOT decide which
// records to build — that responsibility belongs to the decorator in the root
// package. Delivery failure handling (diagnostic log with full payload) lives
// here because only the worker sees the outcome.
//
// # What this package must NOT do
//
//   - Filter or suppress records based on business logic.
//   - Retry failed appends.
//   - Import goAudit or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
