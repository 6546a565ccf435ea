package model

import (
	"cmp"
	"fmt"
	"slices"
)

// RouteTable resolves requests to routes. It is immutable once built and
// safe for concurrent use.
type RouteTable struct {
	routes   []Route
	literals map[string][]Route
	wildcard []Route
}

// NewRouteTable validates the routes and indexes them for matching.
func NewRouteTable(routes []Route) (*RouteTable, error) {
	table := &RouteTable{
		routes:   slices.Clone(routes),
		literals: make(map[string][]Route),
	}

	seen := make(map[string]struct{}, len(routes))

	for _, route := range routes {
		if err := route.Validate(); err != nil {
			return nil, fmt.Errorf("route %q: %w", route.Name, err)
		}

		if _, dup := seen[route.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate route name %q", ErrInvalidRoute, route.Name)
		}

		seen[route.Name] = struct{}{}

		if route.Pattern.IsWildcard() {
			table.wildcard = append(table.wildcard, route)

			continue
		}

		prefix := route.Pattern.Prefix()
		table.literals[prefix] = append(table.literals[prefix], route)
	}

	// Longest prefix first, method-specific before any-method; the stable
	// sort keeps declaration order for the remaining ties.
	slices.SortStableFunc(table.wildcard, func(a, b Route) int {
		if c := cmp.Compare(len(b.Pattern.Prefix()), len(a.Pattern.Prefix())); c != 0 {
			return c
		}

		return cmp.Compare(methodRank(a), methodRank(b))
	})

	for path, candidates := range table.literals {
		slices.SortStableFunc(candidates, func(a, b Route) int {
			return cmp.Compare(methodRank(a), methodRank(b))
		})
		table.literals[path] = candidates
	}

	return table, nil
}

// Match returns the route for the request. Literal patterns win over
// wildcards; among wildcards the longest literal prefix wins.
func (t *RouteTable) Match(method, path string) (Route, bool) {
	for _, route := range t.literals[path] {
		if route.AllowsMethod(method) {
			return route, true
		}
	}

	for _, route := range t.wildcard {
		if route.AllowsMethod(method) && route.Pattern.Matches(path) {
			return route, true
		}
	}

	return Route{}, false
}

// Routes returns the routes in declaration order.
func (t *RouteTable) Routes() []Route {
	return slices.Clone(t.routes)
}

// BreakerNames returns every breaker name referenced by the table, once each.
func (t *RouteTable) BreakerNames() []string {
	names := make([]string, 0, len(t.routes))

	for _, route := range t.routes {
		if !slices.Contains(names, route.Breaker) {
			names = append(names, route.Breaker)
		}
	}

	return names
}

func methodRank(route Route) int {
	if route.Method == MethodAny {
		return 1
	}

	return 0
}
