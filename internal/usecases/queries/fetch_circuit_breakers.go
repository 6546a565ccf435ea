package queries

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
	"github.com/architeacher/storefront-gateway/pkg/decorator"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

type (
	FetchCircuitBreakersQuery struct{}

	FetchCircuitBreakersQueryHandler = decorator.QueryHandler[FetchCircuitBreakersQuery, []circuitbreaker.Snapshot]

	fetchCircuitBreakersQueryHandler struct {
		breakers ports.CircuitBreakers
	}
)

func NewFetchCircuitBreakersQueryHandler(
	breakers ports.CircuitBreakers,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchCircuitBreakersQueryHandler {
	return decorator.ApplyQueryDecorators[FetchCircuitBreakersQuery, []circuitbreaker.Snapshot](
		fetchCircuitBreakersQueryHandler{breakers: breakers},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchCircuitBreakersQueryHandler) Execute(_ context.Context, _ FetchCircuitBreakersQuery) ([]circuitbreaker.Snapshot, error) {
	return h.breakers.Snapshots(), nil
}
