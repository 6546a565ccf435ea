package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/handlers/public"
	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

const (
	FallbackPath       = "/fallbackRoute"
	SwaggerConfigPath  = "/v3/api-docs/swagger-config"
	AggregateDocsPath  = "/aggregate/api-docs"
	HealthPath         = "/actuator/health"
	LivenessPath       = "/actuator/health/liveness"
	ReadinessPath      = "/actuator/health/readiness"
	CircuitBreakerPath = "/actuator/circuitbreakers"
)

type RouterConfig struct {
	App            *usecases.WebApplication
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider otelTrace.TracerProvider
	Config         *config.ServiceConfig
	AuthPolicy     model.AuthPolicy
	Verifier       ports.TokenVerifier
	RateLimitStore throttled.GCRAStoreCtx
	Docs           []model.ServiceDocs
}

// NewRouter builds the public edge: tracking, recovery, CORS, authentication
// and rate limiting in front of the local endpoints and the proxy catch-all.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestTracking())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.CanonicalPath())

	if cfg.Config.Telemetry.Traces.Enabled && cfg.TracerProvider != nil {
		router.Use(otelhttp.NewMiddleware(
			cfg.Config.App.ServiceName,
			otelhttp.WithTracerProvider(cfg.TracerProvider),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		))
		cfg.Logger.Info().Msg("distributed tracing enabled")
	}

	if cfg.Config.SecurityHeaders.Enabled {
		router.Use(middleware.SecurityHeaders(cfg.Config.App.APIVersion, cfg.Config.SecurityHeaders.HSTS))
	}

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Use(middleware.NewMetricsMiddleware(cfg.MetricsClient).Middleware)
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	if cfg.Config.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks)

		router.Use(healthFilter.Middleware)
		router.Use(middleware.AccessLogger(cfg.Logger, cfg.Config.Logging.AccessLog.IncludeQueryParams))
		cfg.Logger.Info().
			Bool("log_health_checks", cfg.Config.Logging.AccessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	if cfg.Config.CORS.Enabled {
		router.Use(middleware.CORS(cfg.Config.CORS.Policy()))
	}

	if cfg.Config.Auth.Enabled {
		router.Use(middleware.Authentication(cfg.AuthPolicy, cfg.Verifier, cfg.Logger))
		cfg.Logger.Info().
			Int("public_endpoints", len(cfg.AuthPolicy.Endpoints())).
			Msg("authentication is enabled")
	}

	if cfg.Config.ThrottledRateLimiting.Enabled {
		rateLimit, err := middleware.ThrottledRateLimitingMiddleware(
			cfg.Config.ThrottledRateLimiting,
			cfg.RateLimitStore,
			cfg.Logger,
		)
		if err != nil {
			return nil, fmt.Errorf("configuring rate limiting: %w", err)
		}

		router.Use(rateLimit)
		cfg.Logger.Info().Str("store", cfg.Config.ThrottledRateLimiting.Store).Msg("rate limiting enabled")
	}

	gateway := public.NewGatewayHandler(cfg.App, cfg.Logger)
	actuator := public.NewActuatorHandler(cfg.App)
	docs := public.NewDocsHandler(cfg.App, cfg.Docs)

	router.Get(FallbackPath, gateway.Fallback)

	router.Get(HealthPath, actuator.Health)
	router.Get(LivenessPath, actuator.Liveness)
	router.Get(ReadinessPath, actuator.Readiness)
	router.Get(CircuitBreakerPath, actuator.CircuitBreakers)

	router.Get(SwaggerConfigPath, docs.SwaggerConfig)
	router.Get(AggregateDocsPath, docs.AggregateDocs)

	router.Handle("/*", http.HandlerFunc(gateway.Proxy))

	return router, nil
}
