//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

import (
	"context"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

//counterfeiter:generate -o ../mocks/gateway.go . Gateway

// Gateway resolves inbound requests to routes and forwards them through the
// route's circuit breaker.
type Gateway interface {
	Resolve(method, path string) (model.Route, error)
	// Forward returns the upstream response for any status the upstream
	// answered with. A rejected call returns *model.BreakerOpenError and a
	// transport failure wraps model.ErrUpstreamUnavailable.
	Forward(ctx context.Context, route model.Route, req model.UpstreamRequest) (*model.UpstreamResponse, error)
	Routes() []model.Route
}
