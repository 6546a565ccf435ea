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
	FetchRoutesQuery struct{}

	FetchRoutesQueryHandler = decorator.QueryHandler[FetchRoutesQuery, []model.Route]

	fetchRoutesQueryHandler struct {
		gateway ports.Gateway
	}
)

func NewFetchRoutesQueryHandler(
	gateway ports.Gateway,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchRoutesQueryHandler {
	return decorator.ApplyQueryDecorators[FetchRoutesQuery, []model.Route](
		fetchRoutesQueryHandler{gateway: gateway},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchRoutesQueryHandler) Execute(_ context.Context, _ FetchRoutesQuery) ([]model.Route, error) {
	return h.gateway.Routes(), nil
}
