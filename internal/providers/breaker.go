package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/homelibrary/bookworm/internal/metrics"
)

// BreakerSettings configures Guarded.
type BreakerSettings struct {
	Name string
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
	// Interval resets the failure counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
}

// Guarded wraps a provider with a circuit breaker. While the breaker is open
// calls fail at once with gobreaker.ErrOpenState.
type Guarded struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[string]
}

// NewGuarded wraps p.
func NewGuarded(p Provider, s BreakerSettings) *Guarded {
	if s.Name == "" {
		s.Name = "llm"
	}
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	metrics.BreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.BreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// A cancelled request says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Guarded{next: p, cb: cb}
}

// ExtractText calls the wrapped provider through the breaker.
func (g *Guarded) ExtractText(ctx context.Context, config Config) (string, error) {
	return g.cb.Execute(func() (string, error) {
		return g.next.ExtractText(ctx, config)
	})
}

// State reports "closed", "half-open" or "open".
func (g *Guarded) State() string {
	return g.cb.State().String()
}

// Rejected reports whether err came from the breaker rather than the backend.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
