package jwks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
)

type (
	VerifierConfig struct {
		Algorithms []string
		Leeway     time.Duration
		Issuer     string
		Audience   string
	}

	// Verifier validates bearer tokens: signature against the trusted keys,
	// expiry always, issuer and audience when configured.
	Verifier struct {
		keys   ports.KeySet
		parser *jwt.Parser
	}

	tokenClaims struct {
		jwt.RegisteredClaims
		PreferredUsername string `json:"preferred_username,omitempty"`
		Scope             string `json:"scope,omitempty"`
	}
)

var _ ports.TokenVerifier = (*Verifier)(nil)

func NewVerifier(keys ports.KeySet, cfg VerifierConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(cfg.Algorithms),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithIssuedAt(),
	}

	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Verifier{
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (*model.Claims, error) {
	claims := &tokenClaims{}

	_, err := v.parser.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)

		return v.keys.Lookup(ctx, kid, token.Method.Alg())
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
	}

	return claims.toModel(), nil
}

func (c *tokenClaims) toModel() *model.Claims {
	claims := &model.Claims{
		Subject:  c.Subject,
		Issuer:   c.Issuer,
		Audience: c.Audience,
		TokenID:  c.ID,
		Username: c.PreferredUsername,
		Scopes:   strings.Fields(c.Scope),
	}

	if c.ExpiresAt != nil {
		claims.ExpiresAt = c.ExpiresAt.Time
	}

	if c.IssuedAt != nil {
		claims.IssuedAt = c.IssuedAt.Time
	}

	return claims
}
