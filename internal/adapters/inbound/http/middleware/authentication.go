package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

const (
	authorizationHeader   = "Authorization"
	wwwAuthenticateHeader = "WWW-Authenticate"
	bearerScheme          = "bearer"
	bearerChallenge       = `Bearer realm="storefront-gateway"`
)

// Authentication rejects requests without a valid bearer token unless the
// method and path are on the public allowlist. Verified claims are stored in
// the request context for downstream middleware and handlers.
func Authentication(policy model.AuthPolicy, verifier ports.TokenVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.IsPublic(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)

				return
			}

			token, ok := bearerToken(r.Header.Get(authorizationHeader))
			if !ok {
				writeUnauthorizedResponse(w, "missing or malformed bearer token")

				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				reqLogger := log.WithContext(r.Context())
				reqLogger.Debug().Err(err).Str("path", r.URL.Path).Msg("token rejected")
				writeUnauthorizedResponse(w, "invalid or expired token")

				return
			}

			ctx := model.ContextWithClaims(r.Context(), claims)
			ctx = logger.ContextWithSubject(ctx, claims.Subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func writeUnauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set(wwwAuthenticateHeader, bearerChallenge)
	writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	_ = json.NewEncoder(w).Encode(response)
}
