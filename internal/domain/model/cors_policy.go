package model

import (
	"slices"
	"strings"
	"time"
)

const wildcardOrigin = "*"

// CORSPolicy is the cross-origin policy applied at the edge.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// AllowsOrigin reports whether origin is permitted.
func (p CORSPolicy) AllowsOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range p.AllowedOrigins {
		if allowed == wildcardOrigin || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	return false
}

// AllowsMethod reports whether a preflight may announce method.
func (p CORSPolicy) AllowsMethod(method string) bool {
	return slices.ContainsFunc(p.AllowedMethods, func(allowed string) bool {
		return allowed == wildcardOrigin || strings.EqualFold(allowed, method)
	})
}

// AllowsAnyHeader reports whether every request header is permitted.
func (p CORSPolicy) AllowsAnyHeader() bool {
	return slices.Contains(p.AllowedHeaders, wildcardOrigin)
}

// AllowsAnyOrigin reports whether the origin list is the wildcard.
func (p CORSPolicy) AllowsAnyOrigin() bool {
	return slices.Contains(p.AllowedOrigins, wildcardOrigin)
}
