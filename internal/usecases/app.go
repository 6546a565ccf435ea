package usecases

import (
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/internal/usecases/commands"
	"github.com/architeacher/storefront-gateway/internal/usecases/queries"
	"github.com/architeacher/storefront-gateway/pkg/decorator"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

type (
	Commands struct {
		ForwardRequest commands.ForwardRequestCommandHandler
	}

	Queries struct {
		FetchLiveness        queries.FetchLivenessQueryHandler
		FetchReadiness       queries.FetchReadinessQueryHandler
		FetchHealthReport    queries.FetchHealthReportQueryHandler
		FetchCircuitBreakers queries.FetchCircuitBreakersQueryHandler
		FetchRoutes          queries.FetchRoutesQueryHandler
		FetchAPIDocs         queries.FetchAPIDocsQueryHandler
	}

	WebApplication struct {
		Commands Commands
		Queries  Queries
	}

	// DocsOptions configures the aggregated API docs query.
	DocsOptions struct {
		Services []model.ServiceDocs
		Cache    decorator.Cache[queries.FetchAPIDocsQuery, *model.APIDocsIndex]
		Config   decorator.CacheConfig
	}
)

func NewWebApplication(
	gateway ports.Gateway,
	breakers ports.CircuitBreakers,
	healthChecker ports.HealthChecker,
	docs DocsOptions,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *WebApplication {
	return &WebApplication{
		Commands: Commands{
			ForwardRequest: commands.NewForwardRequestCommandHandler(gateway, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			FetchLiveness:        queries.NewFetchLivenessQueryHandler(healthChecker, log, metricsClient, tracerProvider),
			FetchReadiness:       queries.NewFetchReadinessQueryHandler(healthChecker, log, metricsClient, tracerProvider),
			FetchHealthReport:    queries.NewFetchHealthReportQueryHandler(healthChecker, log, metricsClient, tracerProvider),
			FetchCircuitBreakers: queries.NewFetchCircuitBreakersQueryHandler(breakers, log, metricsClient, tracerProvider),
			FetchRoutes:          queries.NewFetchRoutesQueryHandler(gateway, log, metricsClient, tracerProvider),
			FetchAPIDocs: queries.NewFetchAPIDocsQueryHandler(
				gateway, docs.Services, docs.Cache, docs.Config, log, metricsClient, tracerProvider,
			),
		},
	}
}
