// Package otel provides OpenTelemetry metric exporter bindings for goAudit counters and
// histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each goAudit metric
// and Int64ObservableGauge per histogram bucket. A single callback reads the decorator's
// MetricsSnapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate decorator state.
package otel
