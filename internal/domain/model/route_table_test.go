package model_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

func mustRoute(t *testing.T, name, method, pattern, upstream, rewrite, breaker string) model.Route {
	t.Helper()

	route, err := model.NewRoute(name, method, pattern, upstream, rewrite, breaker)
	require.NoError(t, err)

	return route
}

func storefrontTable(t *testing.T) *model.RouteTable {
	t.Helper()

	table, err := model.NewRouteTable([]model.Route{
		mustRoute(t, "product_service", "", "/api/product/**", "http://product:8080", "", "productServiceCircuitBreaker"),
		mustRoute(t, "product_service_public", http.MethodGet, "/product/**", "http://product:8080", "/api/product", "productServiceCircuitBreaker"),
		mustRoute(t, "product_service_swagger", http.MethodGet, "/product-service/api-docs", "http://product:8080", "/api-docs", "productServiceSwaggerCircuitBreaker"),
		mustRoute(t, "order_service", "", "/api/order/**", "http://order:8081", "", "orderServiceCircuitBreaker"),
		mustRoute(t, "order_export", http.MethodGet, "/api/order/export/**", "http://reports:8090", "", "reportsCircuitBreaker"),
		mustRoute(t, "order_health", http.MethodGet, "/api/order/health", "http://order:8081", "/actuator/health", "orderServiceCircuitBreaker"),
		mustRoute(t, "inventory_service", "", "/api/inventory/**", "http://inventory:8082", "", "inventoryServiceCircuitBreaker"),
	})
	require.NoError(t, err)

	return table
}

func TestRouteTable_Match(t *testing.T) {
	t.Parallel()

	table := storefrontTable(t)

	cases := []struct {
		name      string
		method    string
		path      string
		wantRoute string
		wantFound bool
	}{
		{name: "wildcard matches bare prefix", method: http.MethodPost, path: "/api/order", wantRoute: "order_service", wantFound: true},
		{name: "wildcard matches nested path", method: http.MethodDelete, path: "/api/order/7/items", wantRoute: "order_service", wantFound: true},
		{name: "literal wins over wildcard", method: http.MethodGet, path: "/api/order/health", wantRoute: "order_health", wantFound: true},
		{name: "literal skipped for other methods", method: http.MethodPost, path: "/api/order/health", wantRoute: "order_service", wantFound: true},
		{name: "longest wildcard prefix wins", method: http.MethodGet, path: "/api/order/export/2024", wantRoute: "order_export", wantFound: true},
		{name: "longer wildcard respects method", method: http.MethodPost, path: "/api/order/export/2024", wantRoute: "order_service", wantFound: true},
		{name: "public product read", method: http.MethodGet, path: "/product/42", wantRoute: "product_service_public", wantFound: true},
		{name: "public product route is GET only", method: http.MethodPost, path: "/product/42", wantFound: false},
		{name: "segment boundary is respected", method: http.MethodGet, path: "/api/products", wantFound: false},
		{name: "swagger literal", method: http.MethodGet, path: "/product-service/api-docs", wantRoute: "product_service_swagger", wantFound: true},
		{name: "swagger literal does not match below", method: http.MethodGet, path: "/product-service/api-docs/extra", wantFound: false},
		{name: "unknown path", method: http.MethodGet, path: "/api/payments", wantFound: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			route, found := table.Match(tc.method, tc.path)

			require.Equal(t, tc.wantFound, found)

			if tc.wantFound {
				require.Equal(t, tc.wantRoute, route.Name)
			}
		})
	}
}

func TestRouteTable_MethodSpecificBeforeAny(t *testing.T) {
	t.Parallel()

	table, err := model.NewRouteTable([]model.Route{
		mustRoute(t, "catalog_any", "", "/catalog/**", "http://catalog:9000", "", "catalog"),
		mustRoute(t, "catalog_get", http.MethodGet, "/catalog/**", "http://catalog-ro:9000", "", "catalog"),
	})
	require.NoError(t, err)

	route, ok := table.Match(http.MethodGet, "/catalog/items")
	require.True(t, ok)
	require.Equal(t, "catalog_get", route.Name)

	route, ok = table.Match(http.MethodPut, "/catalog/items")
	require.True(t, ok)
	require.Equal(t, "catalog_any", route.Name)
}

func TestNewRouteTable_Validation(t *testing.T) {
	t.Parallel()

	valid := mustRoute(t, "orders", "", "/api/order/**", "http://order:8081", "", "orders")

	cases := []struct {
		name    string
		routes  []model.Route
		wantErr error
	}{
		{
			name:    "duplicate names",
			routes:  []model.Route{valid, valid},
			wantErr: model.ErrInvalidRoute,
		},
		{
			name: "missing breaker",
			routes: []model.Route{{
				Name:     "orders",
				Method:   model.MethodAny,
				Pattern:  model.MustParsePathPattern("/api/order/**"),
				Upstream: "http://order:8081",
			}},
			wantErr: model.ErrInvalidRoute,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := model.NewRouteTable(tc.routes)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewRoute_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		method   string
		pattern  string
		upstream string
		rewrite  string
		wantErr  error
	}{
		{name: "relative upstream", pattern: "/api/**", upstream: "order:8081", wantErr: model.ErrInvalidRoute},
		{name: "unsupported scheme", pattern: "/api/**", upstream: "ftp://order", wantErr: model.ErrInvalidRoute},
		{name: "relative rewrite", pattern: "/api/**", upstream: "http://order", rewrite: "api", wantErr: model.ErrInvalidRoute},
		{name: "unknown method", method: "FETCH", pattern: "/api/**", upstream: "http://order", wantErr: model.ErrInvalidRoute},
		{name: "inner wildcard", pattern: "/api/**/items", upstream: "http://order", wantErr: model.ErrInvalidPattern},
		{name: "relative pattern", pattern: "api/**", upstream: "http://order", wantErr: model.ErrInvalidPattern},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := model.NewRoute("route", tc.method, tc.pattern, tc.upstream, tc.rewrite, "breaker")
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRouteTable_BreakerNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"productServiceCircuitBreaker",
		"productServiceSwaggerCircuitBreaker",
		"orderServiceCircuitBreaker",
		"reportsCircuitBreaker",
		"inventoryServiceCircuitBreaker",
	}, storefrontTable(t).BreakerNames())
}

func TestRoute_Target(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		route      model.Route
		requestURL string
		want       string
	}{
		{
			name:       "prefix rewrite keeps remainder and query",
			route:      mustRoute(t, "public", http.MethodGet, "/product/**", "http://product:8080", "/api/product", "p"),
			requestURL: "/product/42?x=1&y=two",
			want:       "http://product:8080/api/product/42?x=1&y=two",
		},
		{
			name:       "prefix rewrite of the bare prefix",
			route:      mustRoute(t, "public", http.MethodGet, "/product/**", "http://product:8080", "/api/product", "p"),
			requestURL: "/product",
			want:       "http://product:8080/api/product",
		},
		{
			name:       "literal path replaced entirely",
			route:      mustRoute(t, "docs", http.MethodGet, "/order-service/api-docs", "http://order:8081", "/api-docs", "d"),
			requestURL: "/order-service/api-docs?group=public",
			want:       "http://order:8081/api-docs?group=public",
		},
		{
			name:       "no rewrite forwards path unchanged",
			route:      mustRoute(t, "orders", "", "/api/order/**", "http://order:8081/", "", "o"),
			requestURL: "/api/order/7",
			want:       "http://order:8081/api/order/7",
		},
		{
			name:       "escaped segments are preserved",
			route:      mustRoute(t, "orders", "", "/api/order/**", "http://order:8081", "", "o"),
			requestURL: "/api/order/a%2Fb?q=%20x",
			want:       "http://order:8081/api/order/a%2Fb?q=%20x",
		},
		{
			name:       "percent-encoded prefix is rewritten like the decoded one",
			route:      mustRoute(t, "public", http.MethodGet, "/product/**", "http://product:8080", "/api/product", "p"),
			requestURL: "/%70roduct/42",
			want:       "http://product:8080/api/product/42",
		},
		{
			name:       "encoded prefix keeps the escaped remainder",
			route:      mustRoute(t, "public", http.MethodGet, "/product/**", "http://product:8080", "/api/product", "p"),
			requestURL: "/%70roduct/a%2Fb",
			want:       "http://product:8080/api/product/a%2Fb",
		},
		{
			name:       "root rewrite strips the prefix",
			route:      mustRoute(t, "strip", "", "/inventory/**", "http://inventory:8082", "/", "i"),
			requestURL: "/inventory/sku-1",
			want:       "http://inventory:8082/sku-1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			requestURL, err := url.Parse(tc.requestURL)
			require.NoError(t, err)

			require.Equal(t, tc.want, tc.route.Target(requestURL))
		})
	}
}
