package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront-gateway/internal/adapters/outbound/jwks"
	"github.com/architeacher/storefront-gateway/internal/adapters/services"
	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/infrastructure"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

type (
	infrastructureDep struct {
		publicHttpServer *http.Server
		adminHttpServer  *http.Server
		upstreamClient   *http.Client
		cacheClient      *infrastructure.KeydbClient
		logger           logger.Logger
		metricsClient    metrics.Client
		tracerProvider   otelTrace.TracerProvider
	}

	repositories struct {
		secretsRepo    ports.SecretsRepository
		docsCache      ports.DocsCache
		rateLimitStore throttled.GCRAStoreCtx
	}

	routing struct {
		table    *model.RouteTable
		specs    []config.BreakerSpec
		breakers *services.CircuitBreakers
	}

	authentication struct {
		policy    model.AuthPolicy
		staticKey *jwks.StaticKeySet
		remoteKey *jwks.RemoteKeySet
		verifier  ports.TokenVerifier
	}

	servicesDep struct {
		gateway       *services.GatewayService
		healthChecker ports.HealthChecker
	}

	applications struct {
		webApp *usecases.WebApplication
	}

	dependencies struct {
		config       *config.ServiceConfig
		configLoader *config.Loader

		infra infrastructureDep

		repos repositories

		routing routing

		auth authentication

		services servicesDep

		apps applications

		// cleanups release resources after both servers have drained, in
		// reverse order of registration.
		cleanups []cleanup
	}

	cleanup struct {
		resource string
		fn       func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{}

	allOpts := append(defaultOptions(ctx), opts...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

func (d *dependencies) onShutdown(resource string, fn func(ctx context.Context) error) {
	d.cleanups = append(d.cleanups, cleanup{resource: resource, fn: fn})
}

func (d *dependencies) releaseResources(ctx context.Context) error {
	var errs []error

	for i := len(d.cleanups) - 1; i >= 0; i-- {
		c := d.cleanups[i]

		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("releasing %s: %w", c.resource, err))
		}
	}

	return errors.Join(errs...)
}
