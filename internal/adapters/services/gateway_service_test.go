package services_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront-gateway/internal/adapters/services"
	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/mocks"
	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics/noop"
)

type stubProbe bool

func (p stubProbe) IsHealthy(context.Context) bool {
	return bool(p)
}

func newRouteTable(t *testing.T) *model.RouteTable {
	t.Helper()

	table, _, err := config.BuildRouteTable(config.Upstreams{
		ProductServiceURL:   "http://product.internal:8080",
		OrderServiceURL:     "http://order.internal:8081",
		InventoryServiceURL: "http://inventory.internal:8082",
	})
	require.NoError(t, err)

	return table
}

func newGateway(t *testing.T, invoker *mocks.FakeUpstreamInvoker, cfg config.CircuitBreakerConfig, opts ...services.GatewayOption) *services.GatewayService {
	t.Helper()

	table := newRouteTable(t)

	breakers, err := services.NewCircuitBreakers(cfg, table.BreakerNames(), nil, logger.NewTestLogger(), noop.NewMetricsClient())
	require.NoError(t, err)

	return services.NewGatewayService(table, breakers, invoker, opts...)
}

func breakerConfig(threshold uint, cooldown time.Duration) config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:             true,
		FailureThreshold:    threshold,
		Cooldown:            cooldown,
	}
}

func upstreamStatus(code int) *model.UpstreamResponse {
	return &model.UpstreamResponse{StatusCode: code, Header: http.Header{}, Body: []byte(http.StatusText(code))}
}

func TestGatewayService_Resolve(t *testing.T) {
	t.Parallel()

	svc := newGateway(t, &mocks.FakeUpstreamInvoker{}, breakerConfig(5, 10*time.Second))

	cases := []struct {
		name      string
		method    string
		path      string
		wantRoute string
		wantErr   error
	}{
		{name: "wildcard any method", method: http.MethodPost, path: "/api/order/17", wantRoute: "order_service"},
		{name: "public product read", method: http.MethodGet, path: "/product/42", wantRoute: "product_service_public"},
		{name: "literal swagger route", method: http.MethodGet, path: "/product-service/api-docs", wantRoute: "product_service_swagger"},
		{name: "method mismatch", method: http.MethodPost, path: "/product/42", wantErr: model.ErrRouteNotFound},
		{name: "unknown path", method: http.MethodGet, path: "/api/unknown", wantErr: model.ErrRouteNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			route, err := svc.Resolve(tc.method, tc.path)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantRoute, route.Name)
		})
	}

	require.Len(t, svc.Routes(), 7)
}

func TestGatewayService_Forward(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		resp       *model.UpstreamResponse
		invokeErr  error
		wantStatus int
		wantErr    error
	}{
		{name: "success", resp: upstreamStatus(http.StatusOK), wantStatus: http.StatusOK},
		{name: "created", resp: upstreamStatus(http.StatusCreated), wantStatus: http.StatusCreated},
		{name: "server error is relayed", resp: upstreamStatus(http.StatusInternalServerError), wantStatus: http.StatusInternalServerError},
		{name: "not found is relayed", resp: upstreamStatus(http.StatusNotFound), wantStatus: http.StatusNotFound},
		{name: "connection refused", invokeErr: model.ErrUpstreamUnavailable, wantErr: model.ErrUpstreamUnavailable},
		{name: "timeout", invokeErr: model.ErrUpstreamTimeout, wantErr: model.ErrUpstreamTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			invoker := &mocks.FakeUpstreamInvoker{}
			invoker.ForwardReturns(tc.resp, tc.invokeErr)

			svc := newGateway(t, invoker, breakerConfig(5, 10*time.Second))

			route, err := svc.Resolve(http.MethodGet, "/api/order/1")
			require.NoError(t, err)

			req := model.UpstreamRequest{Method: http.MethodGet, URL: route.Upstream + "/api/order/1"}

			resp, err := svc.Forward(context.Background(), route, req)

			require.Equal(t, 1, invoker.ForwardCallCount())

			_, forwarded := invoker.ForwardArgsForCall(0)
			require.Equal(t, req.URL, forwarded.URL)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Nil(t, resp)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestGatewayService_Forward_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	invoker := &mocks.FakeUpstreamInvoker{}
	invoker.ForwardReturns(upstreamStatus(http.StatusInternalServerError), nil)

	svc := newGateway(t, invoker, breakerConfig(5, time.Minute))

	route, err := svc.Resolve(http.MethodGet, "/api/inventory/sku-1")
	require.NoError(t, err)

	for range 5 {
		resp, err := svc.Forward(context.Background(), route, model.UpstreamRequest{Method: http.MethodGet})
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	}

	resp, err := svc.Forward(context.Background(), route, model.UpstreamRequest{Method: http.MethodGet})
	require.Nil(t, resp)
	require.ErrorIs(t, err, model.ErrBreakerOpen)

	var openErr *model.BreakerOpenError
	require.ErrorAs(t, err, &openErr)
	require.Equal(t, config.InventoryBreaker, openErr.Breaker)
	require.Equal(t, "OPEN", openErr.State)

	require.Equal(t, 5, invoker.ForwardCallCount(), "an open breaker must not reach the upstream")
}

func TestGatewayService_Forward_SuccessResetsFailures(t *testing.T) {
	t.Parallel()

	invoker := &mocks.FakeUpstreamInvoker{}
	svc := newGateway(t, invoker, breakerConfig(3, time.Minute))

	route, err := svc.Resolve(http.MethodGet, "/api/order/1")
	require.NoError(t, err)

	statuses := []int{500, 500, 200, 500, 500, 200}
	for i, status := range statuses {
		invoker.ForwardReturnsOnCall(i, upstreamStatus(status), nil)
	}

	for range statuses {
		_, err := svc.Forward(context.Background(), route, model.UpstreamRequest{})
		require.NoError(t, err)
	}

	require.Equal(t, len(statuses), invoker.ForwardCallCount())
}

func TestGatewayService_Forward_SharedBreaker(t *testing.T) {
	t.Parallel()

	invoker := &mocks.FakeUpstreamInvoker{}
	invoker.ForwardReturns(nil, model.ErrUpstreamUnavailable)

	svc := newGateway(t, invoker, breakerConfig(2, time.Minute))

	internal, err := svc.Resolve(http.MethodDelete, "/api/product/9")
	require.NoError(t, err)

	public, err := svc.Resolve(http.MethodGet, "/product/9")
	require.NoError(t, err)
	require.Equal(t, internal.Breaker, public.Breaker)

	for range 2 {
		_, err := svc.Forward(context.Background(), internal, model.UpstreamRequest{})
		require.ErrorIs(t, err, model.ErrUpstreamUnavailable)
	}

	_, err = svc.Forward(context.Background(), public, model.UpstreamRequest{})
	require.ErrorIs(t, err, model.ErrBreakerOpen)

	orders, err := svc.Resolve(http.MethodGet, "/api/order/1")
	require.NoError(t, err)

	invoker.ForwardReturns(upstreamStatus(http.StatusOK), nil)

	resp, err := svc.Forward(context.Background(), orders, model.UpstreamRequest{})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGatewayService_Forward_HalfOpen(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		trial       *model.UpstreamResponse
		trialErr    error
		wantState   circuitbreaker.State
		wantForward bool
	}{
		{
			name:        "trial success closes the breaker",
			trial:       upstreamStatus(http.StatusOK),
			wantState:   circuitbreaker.StateClosed,
			wantForward: true,
		},
		{
			name:      "trial failure reopens the breaker",
			trialErr:  model.ErrUpstreamTimeout,
			wantState: circuitbreaker.StateOpen,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			invoker := &mocks.FakeUpstreamInvoker{}
			invoker.ForwardReturnsOnCall(0, nil, model.ErrUpstreamUnavailable)
			invoker.ForwardReturnsOnCall(1, tc.trial, tc.trialErr)
			invoker.ForwardReturns(upstreamStatus(http.StatusOK), nil)

			table := newRouteTable(t)

			breakers, err := services.NewCircuitBreakers(breakerConfig(1, 50*time.Millisecond), table.BreakerNames(), nil, logger.NewTestLogger(), noop.NewMetricsClient())
			require.NoError(t, err)

			svc := services.NewGatewayService(table, breakers, invoker)

			route, err := svc.Resolve(http.MethodGet, "/api/order/1")
			require.NoError(t, err)

			_, err = svc.Forward(context.Background(), route, model.UpstreamRequest{})
			require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

			_, err = svc.Forward(context.Background(), route, model.UpstreamRequest{})
			require.ErrorIs(t, err, model.ErrBreakerOpen)

			time.Sleep(80 * time.Millisecond)

			_, err = svc.Forward(context.Background(), route, model.UpstreamRequest{})
			require.Equal(t, tc.wantForward, err == nil)
			require.Equal(t, 2, invoker.ForwardCallCount())

			breaker, ok := breakers.Get(route.Breaker)
			require.True(t, ok)
			require.Equal(t, tc.wantState, breaker.State())
			require.Equal(t, uint32(0), breaker.Snapshot().ConsecutiveFailures)
		})
	}
}

func TestGatewayService_Forward_SingleHalfOpenTrial(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	entered := make(chan struct{})

	invoker := &mocks.FakeUpstreamInvoker{}
	invoker.ForwardCalls(func(context.Context, model.UpstreamRequest) (*model.UpstreamResponse, error) {
		if invoker.ForwardCallCount() == 1 {
			return nil, model.ErrUpstreamUnavailable
		}

		close(entered)
		<-release

		return upstreamStatus(http.StatusOK), nil
	})

	table := newRouteTable(t)

	breakers, err := services.NewCircuitBreakers(breakerConfig(1, 50*time.Millisecond), table.BreakerNames(), nil, logger.NewTestLogger(), noop.NewMetricsClient())
	require.NoError(t, err)

	svc := services.NewGatewayService(table, breakers, invoker)

	route, err := svc.Resolve(http.MethodGet, "/api/order/1")
	require.NoError(t, err)

	_, err = svc.Forward(context.Background(), route, model.UpstreamRequest{})
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

	time.Sleep(80 * time.Millisecond)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		_, _ = svc.Forward(context.Background(), route, model.UpstreamRequest{})
	}()

	<-entered

	_, err = svc.Forward(context.Background(), route, model.UpstreamRequest{})

	var openErr *model.BreakerOpenError
	require.ErrorAs(t, err, &openErr)
	require.Equal(t, "HALF_OPEN", openErr.State)

	close(release)
	wg.Wait()

	require.Equal(t, 2, invoker.ForwardCallCount())

	breaker, ok := breakers.Get(route.Breaker)
	require.True(t, ok)
	require.Equal(t, circuitbreaker.StateClosed, breaker.State())
}

func TestGatewayService_Health(t *testing.T) {
	t.Parallel()

	invoker := &mocks.FakeUpstreamInvoker{}
	invoker.ForwardReturns(nil, errors.New("connection refused"))

	svc := newGateway(t, invoker, breakerConfig(1, time.Minute),
		services.WithAPIVersion("v2"),
		services.WithDependencyProbe("keydb", stubProbe(true)),
	)

	liveness, err := svc.Liveness(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.HealthStatusOK, liveness.Status)

	readiness, err := svc.Readiness(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.HealthStatusOK, readiness.Status)
	require.Len(t, readiness.Checks, 7)
	require.Equal(t, model.DependencyStatusUp, readiness.Checks["keydb"].Status)

	route, err := svc.Resolve(http.MethodGet, "/api/order/1")
	require.NoError(t, err)

	_, err = svc.Forward(context.Background(), route, model.UpstreamRequest{})
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

	health, err := svc.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.HealthStatusDegraded, health.Status)
	require.Equal(t, "v2", health.Version.API)
	require.NotEmpty(t, health.Version.Go)
	require.NotZero(t, health.System.CPUCores)

	check := health.Checks[config.OrderBreaker]
	require.Equal(t, model.DependencyStatusDown, check.Status)
	require.Equal(t, "OPEN", check.Message)
	require.Contains(t, check.Error, "open since")
	require.Equal(t, model.DependencyStatusUp, health.Checks[config.ProductBreaker].Status)
}

func TestGatewayService_Readiness_ProbeDown(t *testing.T) {
	t.Parallel()

	svc := newGateway(t, &mocks.FakeUpstreamInvoker{}, breakerConfig(5, time.Minute),
		services.WithDependencyProbe("keydb", stubProbe(false)),
	)

	readiness, err := svc.Readiness(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.HealthStatusDegraded, readiness.Status)
	require.Equal(t, model.DependencyStatusDown, readiness.Checks["keydb"].Status)
	require.Equal(t, "unreachable", readiness.Checks["keydb"].Message)
}

func TestNewCircuitBreakers(t *testing.T) {
	t.Parallel()

	names := []string{config.OrderBreaker, config.ProductBreaker}

	breakers, err := services.NewCircuitBreakers(breakerConfig(5, 10*time.Second), names, []config.BreakerSpec{
		{Name: config.OrderBreaker, FailureThreshold: 2, Cooldown: time.Minute},
	}, logger.NewTestLogger(), noop.NewMetricsClient())
	require.NoError(t, err)

	snapshots := breakers.Snapshots()
	require.Len(t, snapshots, 2)
	require.Equal(t, config.OrderBreaker, snapshots[0].Name)
	require.Equal(t, uint(2), snapshots[0].FailureThreshold)
	require.Equal(t, time.Minute, snapshots[0].Cooldown)
	require.Equal(t, uint(5), snapshots[1].FailureThreshold)
	require.Equal(t, 10*time.Second, snapshots[1].Cooldown)

	_, err = services.NewCircuitBreakers(breakerConfig(5, 10*time.Second), names, []config.BreakerSpec{
		{Name: "missingBreaker", FailureThreshold: 1},
	}, logger.NewTestLogger(), noop.NewMetricsClient())
	require.ErrorIs(t, err, circuitbreaker.ErrUnknownBreaker)
}
