package model

import (
	"net/http"
	"net/url"
	"strings"
)

// MethodAny matches every HTTP method.
const MethodAny = "*"

// Route maps a method and path pattern to an upstream guarded by a named breaker.
type Route struct {
	Name     string
	Method   string
	Pattern  PathPattern
	Upstream string
	// Rewrite replaces the pattern's literal prefix in the forwarded path.
	// Empty forwards the path unchanged.
	Rewrite string
	Breaker string
}

// NewRoute parses the pattern and validates the route.
func NewRoute(name, method, pattern, upstream, rewrite, breaker string) (Route, error) {
	parsed, err := ParsePathPattern(pattern)
	if err != nil {
		return Route{}, err
	}

	route := Route{
		Name:     name,
		Method:   normalizeMethod(method),
		Pattern:  parsed,
		Upstream: strings.TrimSuffix(upstream, "/"),
		Rewrite:  rewrite,
		Breaker:  breaker,
	}

	if err := route.Validate(); err != nil {
		return Route{}, err
	}

	return route, nil
}

func (r Route) Validate() error {
	errs := &ValidationErrors{}

	if r.Name == "" {
		errs.Add("name", "must not be empty", "required")
	}

	if r.Breaker == "" {
		errs.Add("breaker", "must not be empty", "required")
	}

	if !IsKnownMethod(r.Method) {
		errs.Add("method", "unknown HTTP method "+r.Method, "invalid")
	}

	if r.Pattern.String() == "" {
		errs.Add("path", "must not be empty", "required")
	}

	if r.Rewrite != "" && !strings.HasPrefix(r.Rewrite, "/") {
		errs.Add("rewrite", "must start with /", "invalid")
	}

	upstream, err := url.Parse(r.Upstream)
	if err != nil || upstream.Host == "" || (upstream.Scheme != "http" && upstream.Scheme != "https") {
		errs.Add("upstream", "must be an absolute http(s) address", "invalid")
	}

	return errs.ErrOrNil()
}

// AllowsMethod reports whether the route accepts the given method.
func (r Route) AllowsMethod(method string) bool {
	return r.Method == MethodAny || strings.EqualFold(r.Method, method)
}

// RewritePath applies the rewrite to the request path and returns it escaped.
// The prefix is matched on the decoded path, as routing does, while the
// remainder keeps the client's escaping.
func (r Route) RewritePath(requestURL *url.URL) string {
	escaped := requestURL.EscapedPath()
	if r.Rewrite == "" {
		return escaped
	}

	prefix := r.Pattern.Prefix()
	if !strings.HasPrefix(requestURL.Path, prefix) {
		return escaped
	}

	rest := escaped[escapedOffset(escaped, len(prefix)):]

	rewrite := r.Rewrite
	if rest != "" {
		rewrite = strings.TrimSuffix(rewrite, "/")
	}

	return rewrite + rest
}

// Target builds the upstream address for the request URL, preserving the
// remainder of the path and the raw query string.
func (r Route) Target(requestURL *url.URL) string {
	target := r.Upstream + r.RewritePath(requestURL)

	if requestURL.RawQuery != "" {
		target += "?" + requestURL.RawQuery
	}

	return target
}

// escapedOffset returns the index in escaped just past the first decoded
// bytes of the path. A percent-encoded triplet decodes to one byte.
func escapedOffset(escaped string, decoded int) int {
	i := 0

	for n := 0; n < decoded && i < len(escaped); n++ {
		if escaped[i] == '%' && i+2 < len(escaped) {
			i += 3

			continue
		}

		i++
	}

	return i
}

func normalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))

	switch method {
	case "", "ANY", MethodAny:
		return MethodAny
	default:
		return method
	}
}

// IsKnownMethod reports whether method is a standard HTTP method or any.
func IsKnownMethod(method string) bool {
	switch normalizeMethod(method) {
	case MethodAny, http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace:
		return true
	default:
		return false
	}
}
