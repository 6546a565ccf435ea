package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/throttled/throttled/v2"

	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

const (
	RateLimitLimitHeader     = "RateLimit-Limit"
	RateLimitRemainingHeader = "RateLimit-Remaining"
	RateLimitResetHeader     = "RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"

	globalRateLimitKey = "global"
)

// ThrottledRateLimitingMiddleware limits requests with GCRA keyed on the
// client address, the authenticated subject, or both.
func ThrottledRateLimitingMiddleware(
	cfg config.ThrottledRateLimiting,
	store throttled.GCRAStoreCtx,
	log logger.Logger,
) (func(http.Handler) http.Handler, error) {
	if cfg.RequestsPerSecond == 0 {
		return nil, fmt.Errorf("creating rate limiter: requests per second must be positive")
	}

	quota := throttled.RateQuota{
		MaxRate:  throttled.PerSec(int(cfg.RequestsPerSecond)),
		MaxBurst: int(cfg.BurstSize),
	}

	rateLimiter, err := throttled.NewGCRARateLimiterCtx(store, quota)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipRateLimit(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)

				return
			}

			limited, result, err := rateLimiter.RateLimitCtx(r.Context(), rateLimitKey(r, cfg), 1)
			if err != nil {
				reqLogger := log.WithContext(r.Context())
				reqLogger.Warn().Err(err).Msg("rate limiter store error")

				if cfg.GracefulDegraded {
					next.ServeHTTP(w, r)

					return
				}

				writeErrorResponse(w, http.StatusServiceUnavailable,
					"RATE_LIMITER_UNAVAILABLE", "rate limiting service temporarily unavailable")

				return
			}

			setRateLimitHeaders(w, result)

			if limited {
				w.Header().Set(RetryAfterHeader, strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
				writeErrorResponse(w, http.StatusTooManyRequests,
					"RATE_LIMIT_EXCEEDED", "too many requests, please try again later")

				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func shouldSkipRateLimit(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if path == skipPath || strings.HasPrefix(path, strings.TrimSuffix(skipPath, "/")+"/") {
			return true
		}
	}

	return false
}

func rateLimitKey(r *http.Request, cfg config.ThrottledRateLimiting) string {
	var parts []string

	if cfg.EnableIPLimiting {
		parts = append(parts, "ip:"+clientIP(r.RemoteAddr))
	}

	if cfg.EnableUserLimiting {
		if claims, ok := model.ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
			parts = append(parts, "user:"+claims.Subject)
		}
	}

	if len(parts) == 0 {
		return globalRateLimitKey
	}

	return strings.Join(parts, "|")
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}

func retryAfterSeconds(retryAfter time.Duration) int {
	seconds := int((retryAfter + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}

	return seconds
}

func setRateLimitHeaders(w http.ResponseWriter, result throttled.RateLimitResult) {
	w.Header().Set(RateLimitLimitHeader, strconv.Itoa(result.Limit))
	w.Header().Set(RateLimitRemainingHeader, strconv.Itoa(result.Remaining))
	w.Header().Set(RateLimitResetHeader, strconv.FormatInt(time.Now().Add(result.ResetAfter).Unix(), 10))
}
