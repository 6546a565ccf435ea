package config

import (
	"fmt"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

// Policy returns the edge CORS policy.
func (c CORS) Policy() model.CORSPolicy {
	return model.CORSPolicy{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
	}
}

// Policy parses the public endpoint allowlist.
func (a Auth) Policy() (model.AuthPolicy, error) {
	policy, err := model.NewAuthPolicy(a.PublicEndpoints)
	if err != nil {
		return model.AuthPolicy{}, fmt.Errorf("parsing AUTH_PUBLIC_ENDPOINTS: %w", err)
	}

	return policy, nil
}
