//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

import (
	"context"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

//counterfeiter:generate -o ../mocks/token_verifier.go . TokenVerifier

type (
	// KeySet resolves the verification key for a token header.
	KeySet interface {
		Lookup(ctx context.Context, kid, alg string) (any, error)
	}

	// TokenVerifier validates a raw bearer token and returns its claims.
	TokenVerifier interface {
		Verify(ctx context.Context, rawToken string) (*model.Claims, error)
	}
)
