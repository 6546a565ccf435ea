package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/handlers/admin"
	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/handlers/public"
	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

// AdminRouterConfig holds dependencies for the admin router.
type AdminRouterConfig struct {
	App           *usecases.WebApplication
	Logger        logger.Logger
	MetricsClient metrics.Client
}

// NewAdminRouter creates a router for internal admin endpoints.
// These endpoints are intended to run on a separate internal port.
func NewAdminRouter(cfg AdminRouterConfig) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))

	adminHandler := admin.NewAdminHandler(cfg.App)
	actuator := public.NewActuatorHandler(cfg.App)

	router.Handle("/metrics", cfg.MetricsClient.Handler())
	router.Get("/admin/routes", adminHandler.ListRoutes)
	router.Get("/admin/circuitbreakers", adminHandler.ListCircuitBreakers)
	router.Get(LivenessPath, actuator.Liveness)
	router.Get(ReadinessPath, actuator.Readiness)

	return router
}
