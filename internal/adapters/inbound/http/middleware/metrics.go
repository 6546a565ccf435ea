package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

const (
	httpMethodKey     = "http.method"
	httpRouteKey      = "http.route"
	httpStatusCodeKey = "http.status_code"

	httpRequestTotal    = "http_requests_total"
	httpRequestDuration = "http_request_duration_seconds"
	httpRequestSize     = "http_request_size_bytes"
	httpResponseSize    = "http_response_size_bytes"

	unmatchedRoute = "unmatched"
)

type MetricsMiddleware struct {
	metricsClient metrics.Client
}

func NewMetricsMiddleware(metricsClient metrics.Client) *MetricsMiddleware {
	return &MetricsMiddleware{
		metricsClient: metricsClient,
	}
}

func (m *MetricsMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		recorder := NewResponseRecorder(w)

		next.ServeHTTP(recorder, r)

		m.recordHTTPRequest(
			r.Context(),
			r.Method,
			routePattern(r),
			recorder.StatusCode(),
			time.Since(startTime),
			clampToUint64(r.ContentLength),
			recorder.BytesWritten(),
		)
	})
}

func (m *MetricsMiddleware) recordHTTPRequest(
	ctx context.Context,
	method, route string,
	statusCode int,
	duration time.Duration,
	requestSize, responseSize uint64,
) {
	attrs := []attribute.KeyValue{
		attribute.String(httpMethodKey, method),
		attribute.String(httpRouteKey, route),
		attribute.String(httpStatusCodeKey, strconv.Itoa(statusCode)),
	}

	m.metricsClient.Inc(ctx, httpRequestTotal, int64(1), attrs...)
	m.metricsClient.Inc(ctx, httpRequestDuration, duration.Seconds(), attrs...)

	m.metricsClient.Inc(
		ctx,
		httpRequestSize,
		requestSize,
		attribute.String(httpMethodKey, method),
		attribute.String(httpRouteKey, route),
	)

	m.metricsClient.Inc(ctx, httpResponseSize, responseSize, attrs...)
}

// routePattern keeps label cardinality bounded by using the chi pattern
// rather than the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return unmatchedRoute
}

func clampToUint64(value int64) uint64 {
	if value > 0 {
		return uint64(value)
	}

	return 0
}
