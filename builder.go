package goAudit

import (
	"errors"
	"strings"

	internalaudit "github.com/MrEthical07/goAudit/internal/audit"
)

// Builder defines a public type used by goAudit APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder[E Entity[ID], ID comparable] struct {
	config Config
	store  Store[E, ID]

	identity IdentityProvider
	sink     Sink
	source   SinkSource

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New[E Entity[ID], ID comparable](store Store[E, ID]) *Builder[E, ID] {
	return &Builder[E, ID]{
		config: DefaultConfig(),
		store:  store,
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithConfig(cfg Config) *Builder[E, ID] {
	b.config = cloneConfig(cfg)
	return b
}

// WithIdentityProvider describes the withidentityprovider operation and its observable behavior.
//
// WithIdentityProvider may return an error when input validation, dependency calls, or security checks fail.
// WithIdentityProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithIdentityProvider(provider IdentityProvider) *Builder[E, ID] {
	b.identity = provider
	return b
}

// WithSink describes the withsink operation and its observable behavior.
//
// WithSink may return an error when input validation, dependency calls, or security checks fail.
// WithSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithSink(sink Sink) *Builder[E, ID] {
	b.sink = sink
	return b
}

// WithSinkSource describes the withsinksource operation and its observable behavior.
//
// WithSinkSource may return an error when input validation, dependency calls, or security checks fail.
// WithSinkSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithSinkSource(source SinkSource) *Builder[E, ID] {
	b.source = source
	return b
}

// WithEntityName describes the withentityname operation and its observable behavior.
//
// WithEntityName may return an error when input validation, dependency calls, or security checks fail.
// WithEntityName does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithEntityName(name string) *Builder[E, ID] {
	b.config.EntityName = name
	return b
}

// WithActionKey describes the withactionkey operation and its observable behavior.
//
// WithActionKey may return an error when input validation, dependency calls, or security checks fail.
// WithActionKey does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithActionKey(key string) *Builder[E, ID] {
	b.config.ActionKey = key
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithMetricsEnabled(enabled bool) *Builder[E, ID] {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) WithLatencyHistograms(enabled bool) *Builder[E, ID] {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder[E, ID]) Build() (*Audited[E, ID], error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("store required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- AUDIT CAPABILITIES --------
	// Auditing is switched on by the presence of an identity provider, not
	// by a runtime flag. Without one, sink and record settings stay unused.
	auditEnabled := b.identity != nil

	var source SinkSource
	if auditEnabled {
		if strings.TrimSpace(cfg.EntityName) == "" {
			return nil, errors.New("EntityName required when an identity provider is configured")
		}
		if strings.TrimSpace(cfg.ActionKey) == "" {
			return nil, errors.New("ActionKey required when an identity provider is configured")
		}

		switch {
		case b.source != nil:
			source = b.source
		case b.sink != nil:
			source = StaticSink(b.sink)
		default:
			return nil, errors.New("audit sink or sink source required when an identity provider is configured")
		}
	}

	audited := &Audited[E, ID]{
		config:   cfg,
		store:    b.store,
		identity: b.identity,
		source:   source,
	}

	audited.metrics = NewMetrics(cfg.Metrics)
	if auditEnabled {
		audited.dispatcher = internalaudit.NewDispatcher(internalaudit.Config{
			BufferSize: cfg.Dispatch.BufferSize,
			DropIfFull: cfg.Dispatch.DropIfFull,
		}, audited.observeAppend)
	}

	b.built = true

	return audited, nil
}
