package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRouteNotFound       = errors.New("no route matches the request")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidToken        = errors.New("invalid bearer token")
	ErrBreakerOpen         = errors.New("upstream circuit is open")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamTimeout     = errors.New("upstream timed out")
	ErrResponseTooLarge    = errors.New("upstream response exceeds the size limit")
	ErrInvalidPattern      = errors.New("invalid path pattern")
	ErrInvalidRoute        = errors.New("invalid route")
	ErrKeyNotFound         = errors.New("signing key not found")
)

// UpstreamStatusError reports a non-2xx response. The response itself is
// still relayed to the client; the error only feeds the circuit breaker.
type UpstreamStatusError struct {
	Route      string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream for route %q answered %d %s", e.Route, e.StatusCode, http.StatusText(e.StatusCode))
}

// BreakerOpenError reports a call rejected by an open or saturated breaker.
// The upstream was not contacted.
type BreakerOpenError struct {
	Breaker string
	State   string
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is %s", e.Breaker, e.State)
}

func (e *BreakerOpenError) Unwrap() error {
	return ErrBreakerOpen
}

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Field + ": " + v.Errors[0].Message
}

func (v *ValidationErrors) Add(field, message, code string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// ErrOrNil returns nil when nothing was collected.
func (v *ValidationErrors) ErrOrNil() error {
	if !v.HasErrors() {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidRoute, v)
}
