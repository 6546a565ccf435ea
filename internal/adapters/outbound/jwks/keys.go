// Package jwks resolves the keys trusted to sign bearer tokens and verifies
// tokens against them.
package jwks

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
)

// keyMatchesAlgorithm reports whether key can verify signatures made with alg.
func keyMatchesAlgorithm(key any, alg string) bool {
	switch {
	case strings.HasPrefix(alg, "RS"), strings.HasPrefix(alg, "PS"):
		_, ok := key.(*rsa.PublicKey)

		return ok
	case strings.HasPrefix(alg, "ES"):
		_, ok := key.(*ecdsa.PublicKey)

		return ok
	case strings.HasPrefix(alg, "HS"):
		_, ok := key.([]byte)

		return ok
	case alg == "EdDSA":
		_, ok := key.(ed25519.PublicKey)

		return ok
	default:
		return false
	}
}

// StaticKeySet holds the shared HMAC secret. The secret can be rotated at
// runtime when the secrets store publishes a new version.
type StaticKeySet struct {
	mu     sync.RWMutex
	secret []byte
}

var _ ports.KeySet = (*StaticKeySet)(nil)

func NewStaticKeySet(secret string) *StaticKeySet {
	return &StaticKeySet{secret: []byte(secret)}
}

func (s *StaticKeySet) Rotate(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.secret = []byte(secret)
}

func (s *StaticKeySet) Lookup(_ context.Context, _ string, alg string) (any, error) {
	if !strings.HasPrefix(alg, "HS") {
		return nil, fmt.Errorf("%w: no shared secret for %s", model.ErrKeyNotFound, alg)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: shared secret is not configured", model.ErrKeyNotFound)
	}

	return append([]byte(nil), s.secret...), nil
}

// Chain consults each key set in order and returns the first key found.
type Chain []ports.KeySet

func (c Chain) Lookup(ctx context.Context, kid, alg string) (any, error) {
	var errs []error

	for _, keys := range c {
		key, err := keys.Lookup(ctx, kid, alg)
		if err == nil {
			return key, nil
		}

		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, model.ErrKeyNotFound
	}

	return nil, errors.Join(errs...)
}
