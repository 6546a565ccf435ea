package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v2"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

const (
	ProductBreaker          = "productServiceCircuitBreaker"
	ProductSwaggerBreaker   = "productServiceSwaggerCircuitBreaker"
	OrderBreaker            = "orderServiceCircuitBreaker"
	OrderSwaggerBreaker     = "orderServiceSwaggerCircuitBreaker"
	InventoryBreaker        = "inventoryServiceCircuitBreaker"
	InventorySwaggerBreaker = "inventoryServiceSwaggerCircuitBreaker"
)

type (
	// RoutesFile is the YAML document accepted by ROUTES_FILE.
	RoutesFile struct {
		Routes   []RouteSpec   `yaml:"routes"`
		Breakers []BreakerSpec `yaml:"breakers"`
	}

	RouteSpec struct {
		Name     string `yaml:"name"`
		Method   string `yaml:"method"`
		Path     string `yaml:"path"`
		Upstream string `yaml:"upstream"`
		Rewrite  string `yaml:"rewrite"`
		Breaker  string `yaml:"breaker"`
	}

	// BreakerSpec overrides the global breaker settings for one name.
	BreakerSpec struct {
		Name             string        `yaml:"name"`
		FailureThreshold uint          `yaml:"failure_threshold"`
		Cooldown         time.Duration `yaml:"cooldown"`
	}
)

// DefaultRoutes is the storefront route table.
func DefaultRoutes(upstreams Upstreams) []RouteSpec {
	return []RouteSpec{
		{Name: "product_service", Path: "/api/product/**", Upstream: upstreams.ProductServiceURL, Breaker: ProductBreaker},
		{Name: "product_service_public", Method: http.MethodGet, Path: "/product/**", Upstream: upstreams.ProductServiceURL, Rewrite: "/api/product", Breaker: ProductBreaker},
		{Name: "product_service_swagger", Method: http.MethodGet, Path: "/product-service/api-docs", Upstream: upstreams.ProductServiceURL, Rewrite: "/api-docs", Breaker: ProductSwaggerBreaker},
		{Name: "order_service", Path: "/api/order/**", Upstream: upstreams.OrderServiceURL, Breaker: OrderBreaker},
		{Name: "order_service_swagger", Method: http.MethodGet, Path: "/order-service/api-docs", Upstream: upstreams.OrderServiceURL, Rewrite: "/api-docs", Breaker: OrderSwaggerBreaker},
		{Name: "inventory_service", Path: "/api/inventory/**", Upstream: upstreams.InventoryServiceURL, Breaker: InventoryBreaker},
		{Name: "inventory_service_swagger", Method: http.MethodGet, Path: "/inventory-service/api-docs", Upstream: upstreams.InventoryServiceURL, Rewrite: "/api-docs", Breaker: InventorySwaggerBreaker},
	}
}

// LoadRoutesFile reads a YAML routes file. Upstream addresses may reference
// environment variables as ${NAME}.
func LoadRoutesFile(path string) (*RoutesFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading routes file: %w", err)
	}

	return ParseRoutes(raw)
}

func ParseRoutes(raw []byte) (*RoutesFile, error) {
	file := &RoutesFile{}
	if err := yaml.UnmarshalStrict(raw, file); err != nil {
		return nil, fmt.Errorf("parsing routes file: %w", err)
	}

	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("routes file declares no routes")
	}

	for i := range file.Routes {
		file.Routes[i].Upstream = os.ExpandEnv(file.Routes[i].Upstream)
	}

	return file, nil
}

// BuildRouteTable resolves the configured routes: the routes file when set,
// the default storefront table otherwise.
func BuildRouteTable(cfg Upstreams) (*model.RouteTable, []BreakerSpec, error) {
	specs := DefaultRoutes(cfg)

	var breakers []BreakerSpec

	if cfg.RoutesFile != "" {
		file, err := LoadRoutesFile(cfg.RoutesFile)
		if err != nil {
			return nil, nil, err
		}

		specs, breakers = file.Routes, file.Breakers
	}

	routes := make([]model.Route, 0, len(specs))

	for _, spec := range specs {
		route, err := model.NewRoute(spec.Name, spec.Method, spec.Path, spec.Upstream, spec.Rewrite, spec.Breaker)
		if err != nil {
			return nil, nil, fmt.Errorf("route %q: %w", spec.Name, err)
		}

		routes = append(routes, route)
	}

	table, err := model.NewRouteTable(routes)
	if err != nil {
		return nil, nil, err
	}

	return table, breakers, nil
}

// ServiceDocs lists the per-service OpenAPI documents served through the
// gateway at /<service>/api-docs.
func (d Docs) ServiceDocs() []model.ServiceDocs {
	docs := make([]model.ServiceDocs, 0, len(d.Services))

	for _, name := range d.Services {
		name = strings.Trim(strings.TrimSpace(name), "/")
		if name == "" {
			continue
		}

		docs = append(docs, model.ServiceDocs{Name: name, Path: "/" + name + "/api-docs"})
	}

	return docs
}
