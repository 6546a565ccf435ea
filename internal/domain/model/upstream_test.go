package model_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   model.Outcome
	}{
		{status: http.StatusOK, want: model.OutcomeSuccess},
		{status: http.StatusCreated, want: model.OutcomeSuccess},
		{status: http.StatusNoContent, want: model.OutcomeSuccess},
		{status: http.StatusMovedPermanently, want: model.OutcomeFailure},
		{status: http.StatusNotFound, want: model.OutcomeFailure},
		{status: http.StatusInternalServerError, want: model.OutcomeFailure},
		{status: http.StatusServiceUnavailable, want: model.OutcomeFailure},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, model.ClassifyStatus(tc.status))
			require.Equal(t, tc.want, (&model.UpstreamResponse{StatusCode: tc.status}).Outcome())
		})
	}
}

func TestUpstreamStatusError(t *testing.T) {
	t.Parallel()

	var err error = &model.UpstreamStatusError{Route: "order_service", StatusCode: http.StatusBadGateway}

	var statusErr *model.UpstreamStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, `upstream for route "order_service" answered 502 Bad Gateway`, err.Error())
	require.Equal(t, "failure", model.OutcomeFailure.String())
	require.Equal(t, "success", model.OutcomeSuccess.String())
}

func TestAggregateStatus(t *testing.T) {
	t.Parallel()

	checks := map[string]model.DependencyCheck{
		"orders": {Status: model.BreakerDependencyStatus("CLOSED")},
	}
	require.Equal(t, model.HealthStatusOK, model.AggregateStatus(checks))

	checks["inventory"] = model.DependencyCheck{Status: model.BreakerDependencyStatus("OPEN")}
	require.Equal(t, model.DependencyStatusDown, checks["inventory"].Status)
	require.Equal(t, model.HealthStatusDegraded, model.AggregateStatus(checks))
	require.Equal(t, model.DependencyStatusDegraded, model.BreakerDependencyStatus("HALF_OPEN"))
	require.Equal(t, model.DependencyStatusUnknown, model.BreakerDependencyStatus("?"))
}

func TestBreakerOpenError(t *testing.T) {
	t.Parallel()

	var err error = &model.BreakerOpenError{Breaker: "orderServiceCircuitBreaker", State: "OPEN"}

	require.ErrorIs(t, err, model.ErrBreakerOpen)
	require.Equal(t, `circuit breaker "orderServiceCircuitBreaker" is OPEN`, err.Error())
}
