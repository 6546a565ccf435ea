package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/architeacher/storefront-gateway/pkg/logger"
)

type contextKey string

const (
	RequestIDHeader     = "Request-Id"
	CorrelationIDHeader = "Correlation-Id"

	maxTrackingIDLength = 128
)

// RequestTracking assigns every request a request id and a correlation id,
// keeping well-formed ones supplied by the client.
func RequestTracking() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := trackingID(r.Header.Get(CorrelationIDHeader))
			requestID := trackingID(r.Header.Get(RequestIDHeader))

			ctx := context.WithValue(r.Context(), logger.ContextKeyCorrelationID, correlationID)
			ctx = context.WithValue(ctx, logger.ContextKeyRequestID, requestID)

			w.Header().Set(CorrelationIDHeader, correlationID)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func trackingID(supplied string) string {
	if supplied == "" || len(supplied) > maxTrackingIDLength {
		return uuid.New().String()
	}

	for _, c := range supplied {
		if c < 0x21 || c > 0x7e {
			return uuid.New().String()
		}
	}

	return supplied
}

func GetRequestID(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

func GetCorrelationID(ctx context.Context) string {
	return logger.CorrelationIDFromContext(ctx)
}
