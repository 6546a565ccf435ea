package middleware

import "net/http"

const apiVersionHeader = "API-Version"

// SecurityHeaders sets the response hardening headers. hsts is only sent when
// configured since the gateway usually sits behind a TLS terminating proxy.
func SecurityHeaders(apiVersion, hsts string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("X-Frame-Options", "DENY")
			headers.Set("X-XSS-Protection", "1; mode=block")
			headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			headers.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			if hsts != "" {
				headers.Set("Strict-Transport-Security", hsts)
			}

			if apiVersion != "" {
				headers.Set(apiVersionHeader, apiVersion)
			}

			next.ServeHTTP(w, r)
		})
	}
}
