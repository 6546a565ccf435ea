//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Package ports defines interface contracts for external dependencies.
package ports

import (
	"context"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
)

//counterfeiter:generate -o ../mocks/upstream_invoker.go . UpstreamInvoker

type (
	// UpstreamInvoker forwards one request to an upstream. A transport
	// failure is returned as an error; any HTTP response, whatever its
	// status, is returned as a response.
	UpstreamInvoker interface {
		Forward(ctx context.Context, req model.UpstreamRequest) (*model.UpstreamResponse, error)
	}

	// CircuitBreakers guards upstream calls by breaker name.
	CircuitBreakers interface {
		Execute(name string, fn func() (*model.UpstreamResponse, error)) (*model.UpstreamResponse, error)
		Snapshots() []circuitbreaker.Snapshot
	}
)
