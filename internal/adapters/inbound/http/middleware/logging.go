package middleware

import (
	"net/http"
	"time"

	"github.com/architeacher/storefront-gateway/pkg/logger"
)

const (
	CircuitBreakerHeader      = "X-Circuit-Breaker"
	CircuitBreakerStateHeader = "X-Circuit-Breaker-State"
)

// AccessLogger writes one structured line per request. The level follows the
// response status class.
func AccessLogger(log logger.Logger, includeQueryParams bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ShouldSkipAccessLog(r.Context()) {
				next.ServeHTTP(w, r)

				return
			}

			start := time.Now()
			recorder := NewResponseRecorder(w)

			next.ServeHTTP(recorder, r)

			duration := time.Since(start)

			reqLogger := log.WithContext(r.Context()).
				With().
				Str("component", "http").
				Logger()

			event := reqLogger.Info()
			if recorder.StatusCode() >= http.StatusInternalServerError {
				event = reqLogger.Error()
			} else if recorder.StatusCode() >= http.StatusBadRequest {
				event = reqLogger.Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Str("proto", r.Proto).
				Str("host", r.Host).
				Int("status", recorder.StatusCode()).
				Uint64("bytes", recorder.BytesWritten()).
				Int64("duration_ms", duration.Milliseconds())

			if includeQueryParams && r.URL.RawQuery != "" {
				event.Str("query", r.URL.RawQuery)
			}

			if referer := r.Referer(); referer != "" {
				event.Str("referer", referer)
			}

			if state := recorder.Header().Get(CircuitBreakerStateHeader); state != "" {
				event.Str("circuit_breaker", recorder.Header().Get(CircuitBreakerHeader)).
					Str("circuit_breaker_state", state)
			}

			event.Send()
		})
	}
}
