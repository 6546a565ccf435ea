package jwks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-jose/go-jose/v4"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

const maxDocumentBytes = 1 << 20

type (
	RemoteConfig struct {
		URL string
		// MinRefreshInterval rate-limits refreshes triggered by unknown key ids.
		MinRefreshInterval time.Duration
		FetchTimeout       time.Duration
		MaxRetries         uint
	}

	// RemoteKeySet caches the issuer's published JWKS document and refreshes
	// it when a token names a key id it has not seen yet.
	RemoteKeySet struct {
		cfg    RemoteConfig
		client *http.Client
		logger logger.Logger
		now    func() time.Time

		// refreshMu serializes fetches; mu guards the cached document.
		refreshMu sync.Mutex
		mu        sync.RWMutex
		keys      jose.JSONWebKeySet
		fetchedAt time.Time
	}
)

var _ ports.KeySet = (*RemoteKeySet)(nil)

func NewRemoteKeySet(cfg RemoteConfig, client *http.Client, log logger.Logger) *RemoteKeySet {
	if client == nil {
		client = http.DefaultClient
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}

	return &RemoteKeySet{
		cfg:    cfg,
		client: client,
		logger: log.WithComponent("jwks"),
		now:    time.Now,
	}
}

func (s *RemoteKeySet) Lookup(ctx context.Context, kid, alg string) (any, error) {
	if key, ok := s.find(kid, alg); ok {
		return key, nil
	}

	if err := s.refresh(ctx, false); err != nil {
		return nil, err
	}

	if key, ok := s.find(kid, alg); ok {
		return key, nil
	}

	return nil, fmt.Errorf("%w: kid %q alg %s", model.ErrKeyNotFound, kid, alg)
}

// Refresh fetches the document unconditionally.
func (s *RemoteKeySet) Refresh(ctx context.Context) error {
	return s.refresh(ctx, true)
}

// Run refreshes the document every interval until ctx is done.
func (s *RemoteKeySet) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("periodic JWKS refresh failed, keeping cached keys")
			}
		}
	}
}

func (s *RemoteKeySet) find(kid, alg string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, jwk := range s.keys.Keys {
		if kid != "" && jwk.KeyID != kid {
			continue
		}

		if jwk.Use != "" && jwk.Use != "sig" {
			continue
		}

		if jwk.Algorithm != "" && jwk.Algorithm != alg {
			continue
		}

		if keyMatchesAlgorithm(jwk.Key, alg) {
			return jwk.Key, true
		}
	}

	return nil, false
}

func (s *RemoteKeySet) refresh(ctx context.Context, force bool) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	fetchedAt := s.fetchedAt
	s.mu.RUnlock()

	if !force && !fetchedAt.IsZero() && s.now().Sub(fetchedAt) < s.cfg.MinRefreshInterval {
		return nil
	}

	keys, err := backoff.Retry(ctx, func() (jose.JSONWebKeySet, error) {
		return s.fetch(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(s.cfg.MaxRetries+1),
	)
	if err != nil {
		return fmt.Errorf("fetching JWKS from %s: %w", s.cfg.URL, err)
	}

	s.mu.Lock()
	s.keys = keys
	s.fetchedAt = s.now()
	s.mu.Unlock()

	s.logger.Debug().Int("keys", len(keys.Keys)).Str("url", s.cfg.URL).Msg("JWKS refreshed")

	return nil
}

func (s *RemoteKeySet) fetch(ctx context.Context) (jose.JSONWebKeySet, error) {
	var keys jose.JSONWebKeySet

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return keys, backoff.Permanent(err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return keys, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
			return keys, backoff.Permanent(err)
		}

		return keys, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return keys, err
	}

	if err := json.Unmarshal(body, &keys); err != nil {
		return keys, backoff.Permanent(fmt.Errorf("decoding JWKS document: %w", err))
	}

	return keys, nil
}
