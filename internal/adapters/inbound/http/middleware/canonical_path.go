package middleware

import (
	"net/http"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

// CanonicalPath rejects request paths that would normalize to a different
// path. Allowlist and route matching only ever see canonical paths.
func CanonicalPath() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !model.IsCanonicalPath(r.URL.Path) {
				writeErrorResponse(w, http.StatusBadRequest, "INVALID_PATH", "request path is not normalized")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
