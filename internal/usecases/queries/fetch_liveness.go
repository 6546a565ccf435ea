package queries

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/decorator"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

type (
	FetchLivenessQuery struct{}

	FetchLivenessQueryHandler = decorator.QueryHandler[FetchLivenessQuery, *model.LivenessReport]

	fetchLivenessQueryHandler struct {
		healthChecker ports.HealthChecker
	}
)

func NewFetchLivenessQueryHandler(
	healthChecker ports.HealthChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchLivenessQueryHandler {
	return decorator.ApplyQueryDecorators[FetchLivenessQuery, *model.LivenessReport](
		fetchLivenessQueryHandler{healthChecker: healthChecker},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchLivenessQueryHandler) Execute(ctx context.Context, _ FetchLivenessQuery) (*model.LivenessReport, error) {
	return h.healthChecker.Liveness(ctx)
}
