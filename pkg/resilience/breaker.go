// Package resilience guards calls to flaky collaborators with circuit breakers.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned without calling the collaborator while the breaker is open.
var ErrOpen = gobreaker.ErrOpenState

// ErrTooManyRequests is returned when the half-open probe quota is used up.
var ErrTooManyRequests = gobreaker.ErrTooManyRequests

// Config controls when a breaker trips and how long it stays open.
type Config struct {
	Name string
	// MaxRequests is the number of probe calls allowed while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts; 0 never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureRatio trips the breaker once MinRequests have been seen.
	FailureRatio float64
	MinRequests  uint32
}

// BreakerMetrics exposes breaker state as a gauge (0 closed, 1 half-open, 2 open).
type BreakerMetrics struct {
	state    *prometheus.GaugeVec
	rejected *prometheus.CounterVec
}

// NewBreakerMetrics registers the breaker instruments with reg.
func NewBreakerMetrics(reg prometheus.Registerer) *BreakerMetrics {
	m := &BreakerMetrics{
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "circuit_breaker_rejected_total",
			Help: "Calls rejected without reaching the collaborator.",
		}, []string{"name"}),
	}
	reg.MustRegister(m.state, m.rejected)
	return m
}

// Breaker wraps a gobreaker circuit breaker.
type Breaker struct {
	name    string
	cb      *gobreaker.CircuitBreaker[any]
	metrics *BreakerMetrics
}

// NewBreaker builds a breaker. isExpected marks errors that are part of normal
// operation (not found, bad input) so they never count as failures; it may be nil.
// Context cancellation never counts as a failure. metrics may be nil.
func NewBreaker(cfg Config, isExpected func(error) bool, metrics *BreakerMetrics, logger *slog.Logger) *Breaker {
	b := &Breaker{name: cfg.Name, metrics: metrics}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < cfg.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return isExpected != nil && isExpected(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			b.setState(to)
		},
	})
	b.setState(gobreaker.StateClosed)
	return b
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) setState(s gobreaker.State) {
	if b.metrics == nil {
		return
	}
	var v float64
	switch s {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	b.metrics.state.WithLabelValues(b.name).Set(v)
}

// Do runs fn through b.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if (errors.Is(err, ErrOpen) || errors.Is(err, ErrTooManyRequests)) && b.metrics != nil {
			b.metrics.rejected.WithLabelValues(b.name).Inc()
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}
