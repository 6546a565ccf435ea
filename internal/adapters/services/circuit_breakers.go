package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

const breakerTransitionsMetric = "circuit_breaker_transitions_total"

// CircuitBreakers is the registry guarding upstream calls, one breaker per name.
type CircuitBreakers = circuitbreaker.Registry[*model.UpstreamResponse]

var _ ports.CircuitBreakers = (*CircuitBreakers)(nil)

// NewCircuitBreakers builds a breaker for every name the route table references.
// Per-name specs override the global threshold and cooldown.
func NewCircuitBreakers(
	cfg config.CircuitBreakerConfig,
	names []string,
	specs []config.BreakerSpec,
	log logger.Logger,
	metricsClient metrics.Client,
) (*CircuitBreakers, error) {
	breakerLog := log.WithComponent("circuit-breaker")

	base := circuitbreaker.Config{
		Enabled:          cfg.Enabled,
		// a half-open breaker admits a single trial call
		MaxRequests:      circuitbreaker.DefaultMaxRequests,
		Interval:         cfg.Interval,
		Timeout:          cfg.Cooldown,
		FailureThreshold: cfg.FailureThreshold,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			breakerLog.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")

			if metricsClient != nil {
				metricsClient.Inc(context.Background(), breakerTransitionsMetric, 1,
					attribute.String("breaker", name),
					attribute.String("to", to.String()),
				)
			}
		},
	}

	opts := make([]circuitbreaker.RegistryOption, 0, len(specs))

	for _, spec := range specs {
		opts = append(opts, circuitbreaker.WithOverride(spec.Name, func(c *circuitbreaker.Config) {
			if spec.FailureThreshold > 0 {
				c.FailureThreshold = spec.FailureThreshold
			}

			if spec.Cooldown > 0 {
				c.Timeout = spec.Cooldown
			}
		}))
	}

	registry, err := circuitbreaker.NewRegistry[*model.UpstreamResponse](base, names, opts...)
	if err != nil {
		return nil, fmt.Errorf("building circuit breakers: %w", err)
	}

	return registry, nil
}
