package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

const (
	headerOrigin           = "Origin"
	headerVary             = "Vary"
	headerRequestMethod    = "Access-Control-Request-Method"
	headerRequestHeaders   = "Access-Control-Request-Headers"
	headerAllowOrigin      = "Access-Control-Allow-Origin"
	headerAllowMethods     = "Access-Control-Allow-Methods"
	headerAllowHeaders     = "Access-Control-Allow-Headers"
	headerAllowCredentials = "Access-Control-Allow-Credentials"
	headerExposeHeaders    = "Access-Control-Expose-Headers"
	headerMaxAge           = "Access-Control-Max-Age"
	corsHeaderPrefix       = "Access-Control-"
	preflightVary          = "Origin, Access-Control-Request-Method, Access-Control-Request-Headers"
)

// CORS applies the edge cross-origin policy. Preflights are answered here and
// never reach an upstream; disallowed preflights are refused with 403.
func CORS(policy model.CORSPolicy) func(http.Handler) http.Handler {
	allowMethods := strings.Join(policy.AllowedMethods, ", ")
	allowHeaders := strings.Join(policy.AllowedHeaders, ", ")
	exposeHeaders := strings.Join(policy.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(int(policy.MaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get(headerOrigin)
			if origin == "" {
				next.ServeHTTP(w, r)

				return
			}

			if isPreflight(r) {
				requested := r.Header.Get(headerRequestMethod)
				if !policy.AllowsOrigin(origin) || !policy.AllowsMethod(requested) {
					w.Header().Set(headerVary, preflightVary)
					w.WriteHeader(http.StatusForbidden)

					return
				}

				headers := w.Header()
				headers.Set(headerAllowOrigin, origin)
				headers.Set(headerAllowMethods, allowMethods)

				switch {
				case policy.AllowsAnyHeader() && r.Header.Get(headerRequestHeaders) != "":
					headers.Set(headerAllowHeaders, r.Header.Get(headerRequestHeaders))
				case !policy.AllowsAnyHeader() && allowHeaders != "":
					headers.Set(headerAllowHeaders, allowHeaders)
				}

				if policy.AllowCredentials {
					headers.Set(headerAllowCredentials, "true")
				}

				if policy.MaxAge > 0 {
					headers.Set(headerMaxAge, maxAge)
				}

				headers.Set(headerVary, preflightVary)
				w.WriteHeader(http.StatusNoContent)

				return
			}

			if policy.AllowsOrigin(origin) {
				headers := w.Header()
				headers.Set(headerAllowOrigin, origin)
				headers.Add(headerVary, headerOrigin)

				if policy.AllowCredentials {
					headers.Set(headerAllowCredentials, "true")
				}

				if exposeHeaders != "" {
					headers.Set(headerExposeHeaders, exposeHeaders)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get(headerRequestMethod) != ""
}

// StripCORSHeaders removes cross-origin headers set by an upstream so the
// edge policy is the only one the client sees.
func StripCORSHeaders(header http.Header) {
	for name := range header {
		if strings.HasPrefix(http.CanonicalHeaderKey(name), corsHeaderPrefix) {
			header.Del(name)
		}
	}
}
