package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
	"github.com/kelseyhightower/envconfig"

	"github.com/architeacher/storefront-gateway/internal/ports"
)

type Loader struct {
	cfg              *ServiceConfig
	secretsRepo      ports.SecretsRepository
	configSignalChan chan os.Signal
	reloadErrors     chan error
	dumpWriter       io.Writer
	lastVersion      uint

	mu       sync.Mutex
	onReload []func(*ServiceConfig)
}

func NewLoader(cfg *ServiceConfig, secretsRepo ports.SecretsRepository, initialVersion uint) *Loader {
	return &Loader{
		cfg:              cfg,
		secretsRepo:      secretsRepo,
		configSignalChan: make(chan os.Signal, 1),
		reloadErrors:     make(chan error, 1),
		dumpWriter:       os.Stdout,
		lastVersion:      initialVersion,
	}
}

// OnReload registers a hook invoked after secrets were re-applied.
func (l *Loader) OnReload(hook func(*ServiceConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.onReload = append(l.onReload, hook)
}

// WatchConfigSignals reloads secrets on SIGHUP or on the poll interval and
// dumps the configuration on SIGUSR1.
func (l *Loader) WatchConfigSignals(ctx context.Context) <-chan error {
	signal.Notify(l.configSignalChan, syscall.SIGHUP, syscall.SIGUSR1)

	var ticker *time.Ticker
	if l.cfg.SecretsStorage.Enabled && l.cfg.SecretsStorage.PollInterval > 0 {
		ticker = time.NewTicker(l.cfg.SecretsStorage.PollInterval)
	}

	go func() {
		defer signal.Stop(l.configSignalChan)
		defer close(l.reloadErrors)

		var reloadTickerChan <-chan time.Time
		if ticker != nil {
			defer ticker.Stop()

			reloadTickerChan = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				return

			case <-reloadTickerChan:
				l.handleConfigReload(ctx)

			case sig := <-l.configSignalChan:
				switch sig {
				case syscall.SIGHUP:
					l.handleConfigReload(ctx)

				case syscall.SIGUSR1:
					l.DumpConfig()
				}
			}
		}
	}()

	return l.reloadErrors
}

// DumpConfig writes the configuration without secret fields.
func (l *Loader) DumpConfig() {
	configJSON, err := json.MarshalIndent(l.cfg, "", "  ")
	if err != nil {
		fmt.Fprintf(l.dumpWriter, "Error marshaling config: %v\n", err)

		return
	}

	fmt.Fprintf(l.dumpWriter, "\n=== Configuration Dump ===\n%s\n=== End Configuration ===\n\n", string(configJSON))
}

// Load authenticates against Vault, applies the secrets to cfg and returns
// the secret version.
func (l *Loader) Load(ctx context.Context, secretsRepo ports.SecretsRepository, cfg *ServiceConfig) (uint, error) {
	if !cfg.SecretsStorage.Enabled {
		return 0, fmt.Errorf("secret storage is not enabled")
	}

	if err := l.authenticateVault(ctx, secretsRepo, cfg.SecretsStorage); err != nil {
		return 0, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	data, version, err := l.readSecrets(ctx, secretsRepo, cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	if err := l.applySecretsToConfig(cfg, data); err != nil {
		return 0, fmt.Errorf("failed to apply secrets to config: %w", err)
	}

	return version, nil
}

func Init() (*ServiceConfig, error) {
	cfg := &ServiceConfig{}

	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	return cfg, nil
}

func (l *Loader) authenticateVault(ctx context.Context, client ports.SecretsRepository, config SecretsStorage) error {
	switch strings.ToLower(config.AuthMethod) {
	case "token":
		if config.Token == "" {
			return fmt.Errorf("token is required for token auth method")
		}
		client.SetToken(config.Token)

		return nil

	case "approle":
		if config.RoleID == "" || config.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth method")
		}

		data := map[string]any{
			"role_id":   config.RoleID,
			"secret_id": config.SecretID,
		}

		resp, err := client.WriteWithContext(ctx, "auth/approle/login", data)
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("no auth info returned from Vault")
		}

		client.SetToken(resp.Auth.ClientToken)

		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", config.AuthMethod)
	}
}

func (l *Loader) handleConfigReload(ctx context.Context) {
	data, version, err := l.readSecrets(ctx, l.secretsRepo, l.cfg)
	if err != nil {
		l.reportReloadStatus(fmt.Errorf("failed to read secrets: %w", err))

		return
	}

	if version == l.lastVersion {
		return
	}

	if err := l.applySecretsToConfig(l.cfg, data); err != nil {
		l.reportReloadStatus(err)

		return
	}

	l.lastVersion = version

	l.mu.Lock()
	hooks := append([]func(*ServiceConfig){}, l.onReload...)
	l.mu.Unlock()

	for _, hook := range hooks {
		hook(l.cfg)
	}

	l.reportReloadStatus(nil)
}

// readSecrets reads the KV v2 secret and returns its data and version.
func (l *Loader) readSecrets(ctx context.Context, secretsRepo ports.SecretsRepository, cfg *ServiceConfig) (map[string]any, uint, error) {
	path := fmt.Sprintf("apps/data/%s", cfg.SecretsStorage.MountPath)

	ctx, cancel := context.WithTimeout(ctx, cfg.SecretsStorage.Timeout)
	defer cancel()

	secret, err := backoff.Retry(ctx, func() (*api.Secret, error) {
		return secretsRepo.GetSecrets(ctx, path)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(cfg.SecretsStorage.MaxRetries+1),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read from path %s after %d retries: %w", path, cfg.SecretsStorage.MaxRetries, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, 0, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, 0, fmt.Errorf("invalid secret format at path %s, missing 'data' key", path)
	}

	metadata, _ := secret.Data["metadata"].(map[string]any)

	version, err := secretVersion(metadata)
	if err != nil {
		return nil, 0, err
	}

	return data, version, nil
}

func secretVersion(metadata map[string]any) (uint, error) {
	if metadata == nil {
		return 0, nil
	}

	currentVersion, ok := metadata["version"]
	if !ok {
		return 0, nil
	}

	switch v := currentVersion.(type) {
	case float64:
		return uint(v), nil
	case int:
		return uint(v), nil
	case uint:
		return v, nil
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("failed to parse version: %w", err)
		}

		return uint(version), nil
	default:
		return 0, fmt.Errorf("unexpected version type: %T", currentVersion)
	}
}

func (l *Loader) applySecretsToConfig(cfg *ServiceConfig, data map[string]any) error {
	for key, value := range data {
		if strValue, ok := value.(string); ok && strValue != "" {
			if err := l.applySecretToConfig(cfg, key, strValue); err != nil {
				return fmt.Errorf("failed to apply secrets to config: %w", err)
			}
		}
	}

	return nil
}

func (l *Loader) applySecretToConfig(cfg *ServiceConfig, key, value string) error {
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("failed to set environment variable %s: %w", key, err)
	}

	switch key {
	case "AUTH_HMAC_SECRET":
		cfg.Auth.HMACSecret = value
	case "AUTH_JWKS_URL":
		cfg.Auth.JWKSURL = value
	case "CACHE_PASSWORD":
		cfg.Cache.Password = value
	case "PRODUCT_SERVICE_URL":
		cfg.Upstreams.ProductServiceURL = value
	case "ORDER_SERVICE_URL":
		cfg.Upstreams.OrderServiceURL = value
	case "INVENTORY_SERVICE_URL":
		cfg.Upstreams.InventoryServiceURL = value
	}

	return nil
}

func (l *Loader) reportReloadStatus(err error) {
	select {
	case l.reloadErrors <- err:
	default:
	}
}
