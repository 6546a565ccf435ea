package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// State is the externally visible state of a circuit breaker.
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
	StateDisabled State = "DISABLED"
)

func (s State) String() string {
	return string(s)
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// Snapshot is a point-in-time view of a breaker used by health and admin endpoints.
type Snapshot struct {
	Name                 string
	State                State
	ConsecutiveFailures  uint32
	ConsecutiveSuccesses uint32
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	FailureThreshold     uint
	Cooldown             time.Duration
	OpenedAt             *time.Time
}
