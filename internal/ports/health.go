//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

import (
	"context"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

//counterfeiter:generate -o ../mocks/health_checker.go . HealthChecker

// HealthChecker reports the gateway's own health and that of its breakers.
type HealthChecker interface {
	Liveness(ctx context.Context) (*model.LivenessReport, error)
	Readiness(ctx context.Context) (*model.ReadinessReport, error)
	Health(ctx context.Context) (*model.HealthReport, error)
}

// DependencyProbe reports whether an optional backing service answers.
type DependencyProbe interface {
	IsHealthy(ctx context.Context) bool
}
