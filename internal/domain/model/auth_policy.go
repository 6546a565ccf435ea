package model

import (
	"fmt"
	"net/http"
	"strings"
)

// PublicEndpoint is an allowlist entry that bypasses authentication.
type PublicEndpoint struct {
	Method  string
	Pattern PathPattern
}

// AuthPolicy decides which requests may proceed without a bearer token.
type AuthPolicy struct {
	public []PublicEndpoint
}

// ParsePublicEndpoint accepts "METHOD /path" or a bare "/path", which means GET.
func ParsePublicEndpoint(entry string) (PublicEndpoint, error) {
	method, path := http.MethodGet, strings.TrimSpace(entry)

	if fields := strings.Fields(entry); len(fields) == 2 {
		method, path = fields[0], fields[1]
	}

	pattern, err := ParsePathPattern(path)
	if err != nil {
		return PublicEndpoint{}, err
	}

	if !IsKnownMethod(method) {
		return PublicEndpoint{}, fmt.Errorf("%w: unknown method in %q", ErrInvalidPattern, entry)
	}

	return PublicEndpoint{Method: normalizeMethod(method), Pattern: pattern}, nil
}

// NewAuthPolicy parses the allowlist entries.
func NewAuthPolicy(entries []string) (AuthPolicy, error) {
	public := make([]PublicEndpoint, 0, len(entries))

	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		endpoint, err := ParsePublicEndpoint(entry)
		if err != nil {
			return AuthPolicy{}, err
		}

		public = append(public, endpoint)
	}

	return AuthPolicy{public: public}, nil
}

// IsPublic reports whether the request may proceed unauthenticated.
func (p AuthPolicy) IsPublic(method, path string) bool {
	for _, endpoint := range p.public {
		if endpoint.Method != MethodAny && !strings.EqualFold(endpoint.Method, method) {
			continue
		}

		if endpoint.Pattern.Matches(path) {
			return true
		}
	}

	return false
}

// Endpoints returns the parsed allowlist.
func (p AuthPolicy) Endpoints() []PublicEndpoint {
	return append([]PublicEndpoint(nil), p.public...)
}
