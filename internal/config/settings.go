package config

import (
	"fmt"
	"strings"
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type (
	ServiceConfig struct {
		App                   App                   `json:"app"`
		SecretsStorage        SecretsStorage        `json:"secrets_storage"`
		PublicHTTPServer      PublicHTTPServer      `json:"public_http_server"`
		AdminHTTPServer       AdminHTTPServer       `json:"admin_http_server"`
		Upstreams             Upstreams             `json:"upstreams"`
		CircuitBreaker        CircuitBreakerConfig  `json:"circuit_breaker"`
		Auth                  Auth                  `json:"auth"`
		CORS                  CORS                  `json:"cors"`
		Docs                  Docs                  `json:"docs"`
		Backoff               Backoff               `json:"backoff"`
		Cache                 Cache                 `json:"cache"`
		ThrottledRateLimiting ThrottledRateLimiting `json:"throttled_rate_limiting"`
		SecurityHeaders       SecurityHeaders       `json:"security_headers"`
		Logging               Logging               `json:"logging"`
		Telemetry             Telemetry             `json:"telemetry"`
	}

	App struct {
		ServiceName string      `envconfig:"APP_SERVICE_NAME" default:"svc-api-gateway" json:"service_name"`
		APIVersion  string      `envconfig:"APP_API_VERSION" default:"v1" json:"api_version"`
		Env         Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	SecretsStorage struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"-"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"-"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"-"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"svc-api-gateway" json:"mount_path"`
		Namespace     string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    uint          `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
		PollInterval  time.Duration `envconfig:"VAULT_POLL_INTERVAL" default:"24h" json:"poll_interval"`
	}

	PublicHTTPServer struct {
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port            uint          `envconfig:"HTTP_SERVER_PORT" default:"9000" json:"port"`
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	AdminHTTPServer struct {
		Enabled         bool          `envconfig:"ADMIN_HTTP_SERVER_ENABLED" default:"true" json:"enabled"`
		Host            string        `envconfig:"ADMIN_HTTP_SERVER_HOST" default:"127.0.0.1" json:"host"`
		Port            uint          `envconfig:"ADMIN_HTTP_SERVER_PORT" default:"9001" json:"port"`
		ReadTimeout     time.Duration `envconfig:"ADMIN_HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"ADMIN_HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"ADMIN_HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"ADMIN_HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	// Upstreams addresses the downstream services and bounds every forwarded call.
	Upstreams struct {
		ProductServiceURL   string        `envconfig:"PRODUCT_SERVICE_URL" default:"http://localhost:8080" json:"product_service_url"`
		OrderServiceURL     string        `envconfig:"ORDER_SERVICE_URL" default:"http://localhost:8081" json:"order_service_url"`
		InventoryServiceURL string        `envconfig:"INVENTORY_SERVICE_URL" default:"http://localhost:8082" json:"inventory_service_url"`
		RoutesFile          string        `envconfig:"ROUTES_FILE" default:"" json:"routes_file,omitempty"`
		Timeout             time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s" json:"timeout"`
		DialTimeout         time.Duration `envconfig:"UPSTREAM_DIAL_TIMEOUT" default:"3s" json:"dial_timeout"`
		MaxIdleConnsPerHost int           `envconfig:"UPSTREAM_MAX_IDLE_CONNS_PER_HOST" default:"32" json:"max_idle_conns_per_host"`
		MaxResponseBytes    int64         `envconfig:"UPSTREAM_MAX_RESPONSE_BYTES" default:"10485760" json:"max_response_bytes"`
		TLS                 TLSConfig     `json:"tls"`
	}

	TLSConfig struct {
		Enabled  bool   `envconfig:"UPSTREAM_TLS_ENABLED" default:"false" json:"enabled"`
		CAFile   string `envconfig:"UPSTREAM_TLS_CA_FILE" default:"" json:"ca_file,omitempty"`
		CertFile string `envconfig:"UPSTREAM_TLS_CERT_FILE" default:"" json:"cert_file,omitempty"`
		KeyFile  string `envconfig:"UPSTREAM_TLS_KEY_FILE" default:"" json:"key_file,omitempty"`
	}

	CircuitBreakerConfig struct {
		Enabled             bool          `envconfig:"CIRCUIT_BREAKER_ENABLED" default:"true" json:"enabled"`
		FailureThreshold    uint          `envconfig:"CIRCUIT_BREAKER_FAILURE_THRESHOLD" default:"5" json:"failure_threshold"`
		Cooldown            time.Duration `envconfig:"CIRCUIT_BREAKER_COOLDOWN" default:"10s" json:"cooldown"`
		Interval            time.Duration `envconfig:"CIRCUIT_BREAKER_INTERVAL" default:"0s" json:"interval"`
	}

	Auth struct {
		Enabled                bool          `envconfig:"AUTH_ENABLED" default:"true" json:"enabled"`
		PublicEndpoints        []string      `envconfig:"AUTH_PUBLIC_ENDPOINTS" default:"/swagger-ui.html,/swagger-ui/**,/v3/api-docs/**,/api-docs/**,/swagger-resources/**,/webjars/**,/aggregate/**,/product-service/api-docs,/order-service/api-docs,/inventory-service/api-docs,/product-service/api-docs/**,/order-service/api-docs/**,/inventory-service/api-docs/**,/product-service/swagger-ui/**,/order-service/swagger-ui/**,/inventory-service/swagger-ui/**,/fallbackRoute,/actuator/**,/product,/product/**,/api/product,/api/product/**" json:"public_endpoints"`
		JWKSURL                string        `envconfig:"AUTH_JWKS_URL" default:"http://localhost:8181/realms/test-client/protocol/openid-connect/certs" json:"jwks_url,omitempty"`
		HMACSecret             string        `envconfig:"AUTH_HMAC_SECRET" default:"" json:"-"`
		Issuer                 string        `envconfig:"AUTH_ISSUER" default:"" json:"issuer,omitempty"`
		Audience               string        `envconfig:"AUTH_AUDIENCE" default:"" json:"audience,omitempty"`
		Algorithms             []string      `envconfig:"AUTH_ALGORITHMS" default:"RS256,ES256,HS256" json:"algorithms"`
		Leeway                 time.Duration `envconfig:"AUTH_LEEWAY" default:"5s" json:"leeway"`
		JWKSRefreshInterval    time.Duration `envconfig:"AUTH_JWKS_REFRESH_INTERVAL" default:"15m" json:"jwks_refresh_interval"`
		JWKSMinRefreshInterval time.Duration `envconfig:"AUTH_JWKS_MIN_REFRESH_INTERVAL" default:"30s" json:"jwks_min_refresh_interval"`
		JWKSFetchTimeout       time.Duration `envconfig:"AUTH_JWKS_FETCH_TIMEOUT" default:"5s" json:"jwks_fetch_timeout"`
	}

	CORS struct {
		Enabled          bool          `envconfig:"CORS_ENABLED" default:"true" json:"enabled"`
		AllowedOrigins   []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000" json:"allowed_origins"`
		AllowedMethods   []string      `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS" json:"allowed_methods"`
		AllowedHeaders   []string      `envconfig:"CORS_ALLOWED_HEADERS" default:"*" json:"allowed_headers"`
		ExposedHeaders   []string      `envconfig:"CORS_EXPOSED_HEADERS" default:"Request-Id,Correlation-Id" json:"exposed_headers"`
		AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true" json:"allow_credentials"`
		MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"1h" json:"max_age"`
	}

	// Docs lists the upstream OpenAPI documents aggregated by the gateway.
	Docs struct {
		Services     []string      `envconfig:"DOCS_SERVICES" default:"product-service,order-service,inventory-service" json:"services"`
		CacheEnabled bool          `envconfig:"DOCS_CACHE_ENABLED" default:"false" json:"cache_enabled"`
		CacheTTL     time.Duration `envconfig:"DOCS_CACHE_TTL" default:"5m" json:"cache_ttl"`
	}

	Backoff struct {
		BaseDelay  time.Duration `envconfig:"BACKOFF_BASE_DELAY" default:"200ms" json:"base_delay"`
		Multiplier float64       `envconfig:"BACKOFF_MULTIPLIER" default:"1.5" json:"multiplier"`
		Jitter     float64       `envconfig:"BACKOFF_JITTER" default:"0.3" json:"jitter"`
		MaxDelay   time.Duration `envconfig:"BACKOFF_MAX_DELAY" default:"5s" json:"max_delay"`
		MaxRetries uint          `envconfig:"BACKOFF_MAX_RETRIES" default:"3" json:"max_retries"`
	}

	Cache struct {
		Address       string        `envconfig:"CACHE_ADDRESS" default:"keydb:6379" json:"address"`
		Password      string        `envconfig:"CACHE_PASSWORD" default:"" json:"-"`
		DB            uint          `envconfig:"CACHE_DB" default:"0" json:"db"`
		PoolSize      uint          `envconfig:"CACHE_POOL_SIZE" default:"10" json:"pool_size"`
		MinIdleConns  uint          `envconfig:"CACHE_MIN_IDLE_CONNS" default:"3" json:"min_idle_conns"`
		DialTimeout   time.Duration `envconfig:"CACHE_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout   time.Duration `envconfig:"CACHE_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout  time.Duration `envconfig:"CACHE_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
		PoolTimeout   time.Duration `envconfig:"CACHE_POOL_TIMEOUT" default:"5s" json:"pool_timeout"`
		MaxRetries    uint          `envconfig:"CACHE_MAX_RETRIES" default:"3" json:"max_retries"`
		DefaultExpiry time.Duration `envconfig:"CACHE_DEFAULT_EXPIRY" default:"24h" json:"default_expiry"`
	}

	ThrottledRateLimiting struct {
		Enabled            bool     `envconfig:"RATE_LIMITING_ENABLED" default:"false" json:"enabled"`
		Store              string   `envconfig:"RATE_LIMITING_STORE" default:"memory" json:"store"`
		RequestsPerSecond  uint     `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"50" json:"requests_per_second"`
		BurstSize          uint     `envconfig:"RATE_LIMITING_BURST_SIZE" default:"100" json:"burst_size"`
		EnableIPLimiting   bool     `envconfig:"RATE_LIMITING_ENABLE_IP_LIMITING" default:"true" json:"enable_ip_limiting"`
		EnableUserLimiting bool     `envconfig:"RATE_LIMITING_ENABLE_USER_LIMITING" default:"true" json:"enable_user_limiting"`
		MaxKeys            uint     `envconfig:"RATE_LIMITING_MAX_KEYS" default:"65536" json:"max_keys"`
		SkipPaths          []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/actuator,/fallbackRoute" json:"skip_paths"`
		GracefulDegraded   bool     `envconfig:"RATE_LIMITING_GRACEFUL_DEGRADED" default:"true" json:"graceful_degraded"`
	}

	SecurityHeaders struct {
		Enabled bool   `envconfig:"SECURITY_HEADERS_ENABLED" default:"true" json:"enabled"`
		HSTS    string `envconfig:"SECURITY_HEADERS_HSTS" default:"" json:"hsts,omitempty"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"json" json:"format"`
		AccessLog AccessLog `json:"access_log"`
	}

	AccessLog struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	Telemetry struct {
		Enabled      bool   `envconfig:"OTEL_ENABLED" default:"false" json:"enabled"`
		ExporterType string `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`

		OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"" json:"otlp_endpoint"`

		OtelGRPCHost       string `envconfig:"OTEL_HOST" json:"otel_grpc_host"`
		OtelGRPCPort       string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`
		OtelProductCluster string `envconfig:"OTEL_PRODUCT_CLUSTER" json:"otel_product_cluster"`

		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true" json:"enabled"`
		Namespace string `envconfig:"METRICS_NAMESPACE" default:"gateway" json:"namespace"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

// Validate rejects combinations the gateway cannot start with.
func (c *ServiceConfig) Validate() error {
	if c.Auth.Enabled && c.Auth.JWKSURL == "" && c.Auth.HMACSecret == "" {
		return fmt.Errorf("auth is enabled but neither AUTH_JWKS_URL nor AUTH_HMAC_SECRET is set")
	}

	if c.Upstreams.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.Upstreams.Timeout)
	}

	if c.CircuitBreaker.Enabled && c.CircuitBreaker.FailureThreshold == 0 {
		return fmt.Errorf("circuit breaker failure threshold must be positive")
	}

	switch strings.ToLower(c.ThrottledRateLimiting.Store) {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf("unsupported rate limiting store %q", c.ThrottledRateLimiting.Store)
	}

	return nil
}

// NeedsCache reports whether any enabled feature is backed by KeyDB.
func (c *ServiceConfig) NeedsCache() bool {
	return c.Docs.CacheEnabled ||
		(c.ThrottledRateLimiting.Enabled && strings.EqualFold(c.ThrottledRateLimiting.Store, RateLimitStoreRedis))
}
