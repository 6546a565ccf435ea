package services

import (
	"errors"
	"fmt"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
)

// mapForwardError translates the breaker's view of a call into what the
// edge relays. A non-2xx answer was only an error for the breaker's sake,
// so its response goes back to the client unchanged.
func mapForwardError(route model.Route, resp *model.UpstreamResponse, err error, state circuitbreaker.State) (*model.UpstreamResponse, error) {
	if err == nil {
		return resp, nil
	}

	if circuitbreaker.IsRejected(err) {
		return nil, &model.BreakerOpenError{Breaker: route.Breaker, State: state.String()}
	}

	var statusErr *model.UpstreamStatusError
	if errors.As(err, &statusErr) && resp != nil {
		return resp, nil
	}

	if errors.Is(err, model.ErrUpstreamUnavailable) ||
		errors.Is(err, model.ErrUpstreamTimeout) ||
		errors.Is(err, model.ErrResponseTooLarge) {
		return nil, err
	}

	return nil, fmt.Errorf("%w: route %q: %w", model.ErrUpstreamUnavailable, route.Name, err)
}
