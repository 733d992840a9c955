// Package prometheus provides Prometheus collectors for goAudit metrics.
//
// [NewPrometheusExporter] accepts an audited store decorator and exposes an [http.Handler]
// that renders all goAudit counters and histograms in Prometheus text exposition format.
// Counter names are prefixed goaudit_*_total; the single histogram is
// goaudit_append_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate decorator state.
package prometheus
