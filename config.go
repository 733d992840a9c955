package goAudit

import (
	"errors"
	"strings"
)

// Config defines a public type used by goAudit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// EntityName is recorded as the actedOn value of every audit record
	// produced by the wrapper. Required when auditing is enabled.
	EntityName string

	// ActionKey is the caller-defined correlation key recorded on every
	// audit record. Required when auditing is enabled.
	ActionKey string

	Dispatch DispatchConfig
	Metrics  MetricsConfig
}

/*
====================================
DISPATCH CONFIG
====================================
*/

// DispatchConfig defines a public type used by goAudit APIs.
//
// DispatchConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DispatchConfig struct {
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goAudit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
PRESETS
====================================
*/

// DefaultConfig returns the configuration the builder starts from: a
// 1024-record dispatch buffer that sheds records on overflow, with
// metrics disabled.
func DefaultConfig() Config {
	return Config{
		Dispatch: DispatchConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// LosslessConfig returns a preset for compliance-grade trails. The
// dispatch queue never drops records, so mutating callers block when the
// sink falls behind; metrics and latency histograms are enabled to make
// that backpressure observable.
func LosslessConfig() Config {
	return Config{
		Dispatch: DispatchConfig{
			BufferSize: 4096,
			DropIfFull: false,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// HighThroughputConfig returns a preset for hot mutation paths: a large
// buffer that sheds records under pressure rather than slowing writers,
// with counters on and histograms off.
func HighThroughputConfig() Config {
	return Config{
		Dispatch: DispatchConfig{
			BufferSize: 8192,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// Config carries only value fields today; a plain copy is a deep clone.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Dispatch
	if c.Dispatch.BufferSize <= 0 {
		return errors.New("Dispatch BufferSize must be > 0")
	}

	// Record identity
	if c.EntityName != "" && strings.TrimSpace(c.EntityName) == "" {
		return errors.New("EntityName must not be blank")
	}
	if c.ActionKey != "" && strings.TrimSpace(c.ActionKey) == "" {
		return errors.New("ActionKey must not be blank")
	}

	return nil
}
