package ai

import (
	"context"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/logging"
	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
)

// Upstream is the pair of operations the gateway needs from the AI provider.
type Upstream interface {
	Transcribe(ctx context.Context, path string, language string) (string, error)
	Translate(ctx context.Context, text, target, source string) (string, error)
}

// ResilientConfig tunes the guards placed around upstream calls.
type ResilientConfig struct {
	// MaxConcurrent bounds in-flight upstream calls (default: 8).
	MaxConcurrent int
	// QueueTimeout is how long a call may wait for a slot (default: 30s).
	QueueTimeout time.Duration
	// OpenTimeout is how long a tripped breaker stays open (default: 60s).
	OpenTimeout time.Duration
}

// Resilient wraps an Upstream with a circuit breaker per operation and a
// shared bulkhead. Calls are never retried: a failure is reported to the
// caller as is.
type Resilient struct {
	next         Upstream
	transcribeCB circuitbreaker.CircuitBreaker[string]
	translateCB  circuitbreaker.CircuitBreaker[string]
	bulkhead     bulkhead.Bulkhead[string]
	logger       logging.Logger
}

func NewResilient(next Upstream, cfg ResilientConfig, logger logging.Logger) *Resilient {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = 30 * time.Second
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}

	r := &Resilient{
		next:   next,
		logger: logger.With("module", "ai"),
	}
	r.transcribeCB = r.newBreaker("transcribe", cfg.OpenTimeout)
	r.translateCB = r.newBreaker("translate", cfg.OpenTimeout)
	r.bulkhead = bulkhead.New[string](bulkhead.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueue:      cfg.MaxConcurrent * 2,
		QueueTimeout:  cfg.QueueTimeout,
	})

	return r
}

func (r *Resilient) newBreaker(op string, openTimeout time.Duration) circuitbreaker.CircuitBreaker[string] {
	return circuitbreaker.New[string](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			r.logger.Warn(context.Background(), "circuit breaker state change",
				"operation", op,
				"from", from.String(),
				"to", to.String())
		},
	})
}

func (r *Resilient) Transcribe(ctx context.Context, path string, language string) (string, error) {
	return r.guard(ctx, r.transcribeCB, func(ctx context.Context) (string, error) {
		return r.next.Transcribe(ctx, path, language)
	})
}

func (r *Resilient) Translate(ctx context.Context, text, target, source string) (string, error) {
	return r.guard(ctx, r.translateCB, func(ctx context.Context) (string, error) {
		return r.next.Translate(ctx, text, target, source)
	})
}

func (r *Resilient) guard(ctx context.Context, cb circuitbreaker.CircuitBreaker[string], op func(ctx context.Context) (string, error)) (string, error) {
	return cb.Execute(ctx, func(ctx context.Context) (string, error) {
		return r.bulkhead.Execute(ctx, op)
	})
}
