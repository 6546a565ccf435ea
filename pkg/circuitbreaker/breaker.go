package circuitbreaker

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker wraps gobreaker to provide resilience for upstream calls.
// It uses generics to provide type-safe execution without interface boxing.
type CircuitBreaker[T any] struct {
	cb       *gobreaker.CircuitBreaker[T]
	cfg      Config
	openedAt atomic.Int64
}

// New creates a new circuit breaker with the given configuration.
// Returns nil if the circuit breaker is disabled in the configuration.
func New[T any](cfg Config) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	cfg = cfg.withDefaults()
	breaker := &CircuitBreaker[T]{cfg: cfg}

	breaker.cb = gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.MaxRequests),
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.FailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				breaker.openedAt.Store(time.Now().UnixNano())
			}

			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, fromGobreaker(from), fromGobreaker(to))
			}
		},
	})

	return breaker
}

// Name returns the name of the circuit breaker.
func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State returns the current state. An expired cooldown is reported as half-open.
func (c *CircuitBreaker[T]) State() State {
	if c == nil {
		return StateDisabled
	}

	return fromGobreaker(c.cb.State())
}

// Snapshot returns the current state together with the internal counters.
func (c *CircuitBreaker[T]) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{State: StateDisabled}
	}

	state := c.State()
	counts := c.cb.Counts()

	snapshot := Snapshot{
		Name:                 c.cfg.Name,
		State:                state,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		Requests:             counts.Requests,
		TotalSuccesses:       counts.TotalSuccesses,
		TotalFailures:        counts.TotalFailures,
		FailureThreshold:     c.cfg.FailureThreshold,
		Cooldown:             c.cfg.Timeout,
	}

	if nanos := c.openedAt.Load(); nanos != 0 {
		openedAt := time.Unix(0, nanos)
		snapshot.OpenedAt = &openedAt
	}

	return snapshot
}

// Execute runs the given function through the circuit breaker.
// If the circuit breaker is nil, the function is executed directly.
// Any non-nil error returned by fn counts as a failure; the result is
// returned alongside it so callers can still inspect a failed response.
// Returns ErrCircuitOpen when the circuit breaker is in open state.
// Returns ErrTooManyRequests when the circuit breaker is in half-open state
// and the trial slot is taken.
func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			var zero T

			return zero, ErrCircuitOpen
		}

		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			var zero T

			return zero, ErrTooManyRequests
		}

		return result, err
	}

	return result, nil
}
