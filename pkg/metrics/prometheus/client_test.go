package prometheus_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/storefront-gateway/pkg/metrics"
	"github.com/architeacher/storefront-gateway/pkg/metrics/prometheus"
)

func scrape(t *testing.T, client *prometheus.MetricsClient) string {
	t.Helper()

	rec := httptest.NewRecorder()
	client.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	return string(body)
}

func TestMetricsClient_Inc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		record   func(client *prometheus.MetricsClient)
		contains []string
		excludes []string
		series   map[string]int
	}{
		{
			name: "counter with labels",
			record: func(client *prometheus.MetricsClient) {
				ctx := context.Background()
				client.Inc(ctx, "upstream_requests_total", 1,
					attribute.String("route", "order_service"), attribute.String("outcome", "failure"))
				client.Inc(ctx, "upstream_requests_total", int64(2),
					attribute.String("route", "order_service"), attribute.String("outcome", "failure"))
			},
			contains: []string{`gateway_upstream_requests_total{outcome="failure",route="order_service"} 3`},
		},
		{
			name: "seconds suffix becomes a histogram",
			record: func(client *prometheus.MetricsClient) {
				client.Inc(context.Background(), "upstream_duration_seconds", 0.2,
					attribute.String("route", "inventory_service"))
			},
			contains: []string{
				`gateway_upstream_duration_seconds_count{route="inventory_service"} 1`,
				`gateway_upstream_duration_seconds_sum{route="inventory_service"} 0.2`,
			},
		},
		{
			name: "dotted keys are sanitized",
			record: func(client *prometheus.MetricsClient) {
				client.Inc(context.Background(), "http.server.requests", 1, attribute.String("http.method", "GET"))
			},
			contains: []string{`gateway_http_server_requests{http_method="GET"} 1`},
		},
		{
			name: "missing labels are filled and unknown values ignored",
			record: func(client *prometheus.MetricsClient) {
				ctx := context.Background()
				client.Inc(ctx, "breaker_transitions_total", 1,
					attribute.String("breaker", "orders"), attribute.String("to", "OPEN"))
				client.Inc(ctx, "breaker_transitions_total", 1, attribute.String("breaker", "orders"))
				client.Inc(ctx, "breaker_transitions_total", "not a number")
			},
			contains: []string{`gateway_breaker_transitions_total{breaker="orders",to="OPEN"} 1`},
			series:   map[string]int{"gateway_breaker_transitions_total{": 2},
		},
		{
			name: "negative counter increments are dropped",
			record: func(client *prometheus.MetricsClient) {
				client.Inc(context.Background(), "dropped_total", -1)
			},
			excludes: []string{"gateway_dropped_total"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := prometheus.NewMetricsClient(
				prometheus.WithNamespace("gateway"),
				prometheus.WithDescriptors(map[string]metrics.Descriptor{
					"upstream_requests_total": {Description: "Forwarded upstream calls."},
				}),
			)

			tc.record(client)
			body := scrape(t, client)

			for _, want := range tc.contains {
				require.Contains(t, body, want)
			}

			for _, unwanted := range tc.excludes {
				require.NotContains(t, body, unwanted)
			}

			for prefix, want := range tc.series {
				require.Equal(t, want, strings.Count(body, prefix))
			}
		})
	}
}

func TestMetricsClient_Runtime(t *testing.T) {
	t.Parallel()

	client := prometheus.NewMetricsClient()

	require.Contains(t, scrape(t, client), "go_goroutines")
	require.NoError(t, client.Shutdown(context.Background()))
}

func TestToFloat64(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{name: "int", value: 3, want: 3, wantOK: true},
		{name: "int64", value: int64(4), want: 4, wantOK: true},
		{name: "uint32", value: uint32(5), want: 5, wantOK: true},
		{name: "float64", value: 0.5, want: 0.5, wantOK: true},
		{name: "string", value: "7", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := metrics.ToFloat64(tc.value)
			require.Equal(t, tc.wantOK, ok)
			require.InDelta(t, tc.want, got, 0.0001)
		})
	}
}
