package circuitbreaker

import "errors"

// Sentinel errors for circuit breaker states.
var (
	// ErrCircuitOpen indicates the circuit breaker is in open state,
	// rejecting all requests to allow the downstream service to recover.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests indicates the circuit breaker is in half-open state
	// and the trial request slot is already taken.
	ErrTooManyRequests = errors.New("too many requests in half-open state")

	// ErrUnknownBreaker is returned by the registry for a name it was not built with.
	ErrUnknownBreaker = errors.New("unknown circuit breaker")

	ErrEmptyName = errors.New("circuit breaker name must not be empty")
)

// IsRejected reports whether err means the call was refused without running.
func IsRejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}
