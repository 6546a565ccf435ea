package circuitbreaker

import "time"

const (
	DefaultFailureThreshold uint = 5
	DefaultCooldown              = 10 * time.Second
	DefaultMaxRequests      uint = 1
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name identifies the circuit breaker in logs, metrics and routes.
	Name string

	// Enabled determines whether the circuit breaker is active.
	// When false, New returns nil and Execute passes through directly.
	Enabled bool

	// MaxRequests is the number of trial calls admitted while half-open.
	// Zero means one.
	MaxRequests uint

	// Interval is the cyclic period of the closed state after which the
	// internal counts are cleared. Zero keeps the counts until a success
	// resets the consecutive-failure counter.
	Interval time.Duration

	// Timeout is the cooldown spent in the open state before the next call
	// is admitted as a half-open trial.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the breaker from closed to open.
	FailureThreshold uint

	// OnStateChange is invoked synchronously on every transition while the
	// breaker lock is held; it must not call back into the breaker.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns an enabled configuration with the gateway defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		MaxRequests:      DefaultMaxRequests,
		Timeout:          DefaultCooldown,
		FailureThreshold: DefaultFailureThreshold,
	}
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultCooldown
	}

	if c.MaxRequests == 0 {
		c.MaxRequests = DefaultMaxRequests
	}

	return c
}
