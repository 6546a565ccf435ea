package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/throttled/throttled/v2/store/memstore"

	inboundhttp "github.com/architeacher/storefront-gateway/internal/adapters/inbound/http"
	"github.com/architeacher/storefront-gateway/internal/adapters/outbound/jwks"
	"github.com/architeacher/storefront-gateway/internal/adapters/outbound/upstream"
	"github.com/architeacher/storefront-gateway/internal/adapters/repos"
	"github.com/architeacher/storefront-gateway/internal/adapters/services"
	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/infrastructure"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/pkg/decorator"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
	"github.com/architeacher/storefront-gateway/pkg/metrics/noop"
	"github.com/architeacher/storefront-gateway/pkg/metrics/prometheus"
)

var metricDescriptors = map[string]metrics.Descriptor{
	"http_requests_total":               {Description: "Total number of HTTP requests served by the gateway."},
	"http_request_duration_seconds":     {Description: "Latency of HTTP requests served by the gateway.", Unit: "s"},
	"http_request_size_bytes":           {Description: "Size of inbound request bodies.", Unit: "By"},
	"http_response_size_bytes":          {Description: "Size of relayed response bodies.", Unit: "By"},
	"circuit_breaker_transitions_total": {Description: "Circuit breaker state transitions by breaker and target state."},
}

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithSecretsRepository(),
		WithConfigLoader(ctx),
		WithConfigValidation(),
		WithMetrics(),
		WithCache(ctx),
		WithRepositories(),
		WithRouting(),
		WithTracing(ctx),
		WithUpstreamClient(),
		WithAuthentication(ctx),
		WithGatewayService(),
		WithApplication(),
		WithHTTPServer(),
		WithAdminHTTPServer(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout
		vaultConfig.MaxRetries = int(d.config.SecretsStorage.MaxRetries)

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.repos.secretsRepo == nil {
			return nil
		}

		loader := config.NewLoader(d.config, d.repos.secretsRepo, 0)

		version, err := loader.Load(ctx, d.repos.secretsRepo, d.config)
		if err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.configLoader = config.NewLoader(d.config, d.repos.secretsRepo, version)

		d.infra.logger.Info().
			Uint("version", version).
			Msg("secrets loaded from Vault")

		return nil
	}
}

// WithConfigValidation runs after secrets are applied, since some required
// values such as the HMAC secret may only come from Vault.
func WithConfigValidation() DependencyOption {
	return func(d *dependencies) error {
		if err := d.config.Validate(); err != nil {
			return fmt.Errorf("validating configuration: %w", err)
		}

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client := prometheus.NewMetricsClient(
			prometheus.WithNamespace(d.config.Telemetry.Metrics.Namespace),
			prometheus.WithDescriptors(metricDescriptors),
		)

		d.infra.metricsClient = client
		d.onShutdown("metrics", client.Shutdown)

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Enabled || !d.config.Telemetry.Traces.Enabled {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tracing, err := infrastructure.NewTracing(ctx, d.config.App, d.config.Telemetry, d.routing.table)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tracing.Provider()
		d.onShutdown("tracer", tracing.Shutdown)

		return nil
	}
}

func WithCache(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.NeedsCache() {
			return nil
		}

		client := infrastructure.NewKeyDBClient(d.config.Cache, d.infra.logger)

		pingCtx, cancel := context.WithTimeout(ctx, d.config.Cache.DialTimeout)
		defer cancel()

		if err := client.Ping(pingCtx); err != nil {
			// Both consumers degrade gracefully, so an unreachable cache only warns.
			d.infra.logger.Warn().
				Err(err).
				Str("address", d.config.Cache.Address).
				Msg("cache is not reachable yet")
		}

		d.infra.cacheClient = client
		d.onShutdown("cache", func(context.Context) error {
			return client.Close()
		})

		return nil
	}
}

func WithRepositories() DependencyOption {
	return func(d *dependencies) error {
		if d.config.Docs.CacheEnabled && d.infra.cacheClient != nil {
			d.repos.docsCache = repos.NewDocsCacheRepository(d.infra.cacheClient, d.infra.logger)
		}

		if !d.config.ThrottledRateLimiting.Enabled {
			return nil
		}

		if strings.EqualFold(d.config.ThrottledRateLimiting.Store, config.RateLimitStoreRedis) {
			store, err := repos.NewRateLimitStore(d.infra.cacheClient)
			if err != nil {
				return fmt.Errorf("creating rate limit store: %w", err)
			}

			d.repos.rateLimitStore = store

			return nil
		}

		store, err := memstore.NewCtx(int(d.config.ThrottledRateLimiting.MaxKeys))
		if err != nil {
			return fmt.Errorf("creating in-memory rate limit store: %w", err)
		}

		d.repos.rateLimitStore = store

		return nil
	}
}

func WithRouting() DependencyOption {
	return func(d *dependencies) error {
		table, specs, err := config.BuildRouteTable(d.config.Upstreams)
		if err != nil {
			return fmt.Errorf("building route table: %w", err)
		}

		breakers, err := services.NewCircuitBreakers(
			d.config.CircuitBreaker,
			table.BreakerNames(),
			specs,
			d.infra.logger,
			d.infra.metricsClient,
		)
		if err != nil {
			return fmt.Errorf("creating circuit breakers: %w", err)
		}

		d.routing = routing{
			table:    table,
			specs:    specs,
			breakers: breakers,
		}

		d.infra.logger.Info().
			Int("routes", len(table.Routes())).
			Strs("breakers", table.BreakerNames()).
			Msg("route table loaded")

		return nil
	}
}

func WithUpstreamClient() DependencyOption {
	return func(d *dependencies) error {
		client, err := infrastructure.NewUpstreamHTTPClient(d.config.Upstreams, d.infra.tracerProvider)
		if err != nil {
			return fmt.Errorf("creating upstream HTTP client: %w", err)
		}

		d.infra.upstreamClient = client
		d.onShutdown("upstream", func(context.Context) error {
			client.CloseIdleConnections()

			return nil
		})

		return nil
	}
}

// WithAuthentication wires the token verifier. Remote keys are tried before
// the shared secret; a secrets reload rotates the shared secret in place.
func WithAuthentication(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		policy, err := d.config.Auth.Policy()
		if err != nil {
			return err
		}

		d.auth.policy = policy

		if !d.config.Auth.Enabled {
			return nil
		}

		var chain jwks.Chain

		if d.config.Auth.JWKSURL != "" {
			remote := jwks.NewRemoteKeySet(jwks.RemoteConfig{
				URL:                d.config.Auth.JWKSURL,
				MinRefreshInterval: d.config.Auth.JWKSMinRefreshInterval,
				FetchTimeout:       d.config.Auth.JWKSFetchTimeout,
				MaxRetries:         d.config.Backoff.MaxRetries,
			}, &http.Client{Timeout: d.config.Auth.JWKSFetchTimeout}, d.infra.logger)

			if err := remote.Refresh(ctx); err != nil {
				d.infra.logger.Warn().
					Err(err).
					Str("jwks_url", d.config.Auth.JWKSURL).
					Msg("initial JWKS fetch failed, keys will be fetched on demand")
			}

			go remote.Run(ctx, d.config.Auth.JWKSRefreshInterval)

			d.auth.remoteKey = remote
			chain = append(chain, remote)
		}

		static := jwks.NewStaticKeySet(d.config.Auth.HMACSecret)
		d.auth.staticKey = static
		chain = append(chain, static)

		if d.configLoader != nil {
			d.configLoader.OnReload(func(cfg *config.ServiceConfig) {
				static.Rotate(cfg.Auth.HMACSecret)
			})
		}

		d.auth.verifier = jwks.NewVerifier(chain, jwks.VerifierConfig{
			Algorithms: d.config.Auth.Algorithms,
			Leeway:     d.config.Auth.Leeway,
			Issuer:     d.config.Auth.Issuer,
			Audience:   d.config.Auth.Audience,
		})

		return nil
	}
}

func WithGatewayService() DependencyOption {
	return func(d *dependencies) error {
		invoker := upstream.NewClient(
			upstream.WithHTTPClient(d.infra.upstreamClient),
			upstream.WithTimeout(d.config.Upstreams.Timeout),
			upstream.WithMaxResponseBytes(d.config.Upstreams.MaxResponseBytes),
		)

		opts := []services.GatewayOption{
			services.WithAPIVersion(d.config.App.APIVersion),
		}

		if d.infra.cacheClient != nil {
			opts = append(opts, services.WithDependencyProbe("cache", d.infra.cacheClient))
		}

		gateway := services.NewGatewayService(d.routing.table, d.routing.breakers, invoker, opts...)

		d.services.gateway = gateway
		d.services.healthChecker = gateway

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		docs := usecases.DocsOptions{
			Services: d.config.Docs.ServiceDocs(),
			Config: decorator.CacheConfig{
				Enabled: d.config.Docs.CacheEnabled && d.repos.docsCache != nil,
				TTL:     d.config.Docs.CacheTTL,
			},
		}

		if d.repos.docsCache != nil {
			docs.Cache = repos.NewFetchAPIDocsCacheAdapter(d.repos.docsCache)
		}

		d.apps.webApp = usecases.NewWebApplication(
			d.services.gateway,
			d.routing.breakers,
			d.services.healthChecker,
			docs,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.apps.webApp,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			Config:         d.config,
			AuthPolicy:     d.auth.policy,
			Verifier:       d.auth.verifier,
			RateLimitStore: d.repos.rateLimitStore,
			Docs:           d.config.Docs.ServiceDocs(),
		})
		if err != nil {
			return fmt.Errorf("creating public router: %w", err)
		}

		cfg := d.config.PublicHTTPServer

		d.infra.publicHttpServer = &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}

		return nil
	}
}

func WithAdminHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.AdminHTTPServer.Enabled {
			return nil
		}

		router := inboundhttp.NewAdminRouter(inboundhttp.AdminRouterConfig{
			App:           d.apps.webApp,
			Logger:        d.infra.logger,
			MetricsClient: d.infra.metricsClient,
		})

		cfg := d.config.AdminHTTPServer

		d.infra.adminHttpServer = &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}

		return nil
	}
}
