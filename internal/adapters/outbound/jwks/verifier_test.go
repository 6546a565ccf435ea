package jwks_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront-gateway/internal/adapters/outbound/jwks"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

type issuer struct {
	server  *httptest.Server
	fetches atomic.Int32
	keys    atomic.Pointer[jose.JSONWebKeySet]
}

func newIssuer(t *testing.T, keys ...jose.JSONWebKey) *issuer {
	t.Helper()

	iss := &issuer{}
	iss.publish(keys...)

	iss.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		iss.fetches.Add(1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(iss.keys.Load())
	}))
	t.Cleanup(iss.server.Close)

	return iss
}

func (i *issuer) publish(keys ...jose.JSONWebKey) {
	i.keys.Store(&jose.JSONWebKeySet{Keys: keys})
}

func (i *issuer) keySet(minRefresh time.Duration) *jwks.RemoteKeySet {
	return jwks.NewRemoteKeySet(jwks.RemoteConfig{
		URL:                i.server.URL,
		MinRefreshInterval: minRefresh,
		FetchTimeout:       time.Second,
	}, i.server.Client(), logger.NewTestLogger())
}

func mustRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return key
}

func sign(t *testing.T, method jwt.SigningMethod, key any, kid string, claims jwt.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(method, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}

	signed, err := token.SignedString(key)
	require.NoError(t, err)

	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":                "user-42",
		"iss":                "http://localhost:8181/realms/test-client",
		"aud":                "storefront",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"iat":                time.Now().Unix(),
		"jti":                "token-1",
		"preferred_username": "alice",
		"scope":              "openid profile",
	}
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	rsaKey := mustRSAKey(t)
	otherKey := mustRSAKey(t)

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	iss := newIssuer(t,
		jose.JSONWebKey{Key: &rsaKey.PublicKey, KeyID: "rsa-1", Algorithm: "RS256", Use: "sig"},
		jose.JSONWebKey{Key: &ecKey.PublicKey, KeyID: "ec-1", Algorithm: "ES256", Use: "sig"},
	)

	keys := jwks.Chain{jwks.NewStaticKeySet("shared-secret-for-tests"), iss.keySet(time.Minute)}

	verifier := jwks.NewVerifier(keys, jwks.VerifierConfig{
		Algorithms: []string{"RS256", "ES256", "HS256"},
		Leeway:     time.Second,
		Issuer:     "http://localhost:8181/realms/test-client",
		Audience:   "storefront",
	})

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.example"

	wrongAudience := validClaims()
	wrongAudience["aud"] = "admin-console"

	cases := []struct {
		name    string
		token   func() string
		wantErr bool
	}{
		{
			name:  "RS256 from JWKS",
			token: func() string { return sign(t, jwt.SigningMethodRS256, rsaKey, "rsa-1", validClaims()) },
		},
		{
			name:  "ES256 from JWKS",
			token: func() string { return sign(t, jwt.SigningMethodES256, ecKey, "ec-1", validClaims()) },
		},
		{
			name:  "HS256 with the shared secret",
			token: func() string { return sign(t, jwt.SigningMethodHS256, []byte("shared-secret-for-tests"), "", validClaims()) },
		},
		{
			name:    "expired",
			token:   func() string { return sign(t, jwt.SigningMethodRS256, rsaKey, "rsa-1", expired) },
			wantErr: true,
		},
		{
			name:    "missing expiry",
			token:   func() string { return sign(t, jwt.SigningMethodRS256, rsaKey, "rsa-1", noExpiry) },
			wantErr: true,
		},
		{
			name:    "signed by an untrusted key",
			token:   func() string { return sign(t, jwt.SigningMethodRS256, otherKey, "rsa-1", validClaims()) },
			wantErr: true,
		},
		{
			name:    "HS256 with the wrong secret",
			token:   func() string { return sign(t, jwt.SigningMethodHS256, []byte("guess"), "", validClaims()) },
			wantErr: true,
		},
		{
			name:    "algorithm not allowed",
			token:   func() string { return sign(t, jwt.SigningMethodHS512, []byte("shared-secret-for-tests"), "", validClaims()) },
			wantErr: true,
		},
		{
			name:    "unsigned",
			token:   func() string { return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, "", validClaims()) },
			wantErr: true,
		},
		{
			name:    "wrong issuer",
			token:   func() string { return sign(t, jwt.SigningMethodRS256, rsaKey, "rsa-1", wrongIssuer) },
			wantErr: true,
		},
		{
			name:    "wrong audience",
			token:   func() string { return sign(t, jwt.SigningMethodRS256, rsaKey, "rsa-1", wrongAudience) },
			wantErr: true,
		},
		{
			name:    "malformed",
			token:   func() string { return "not.a.jwt" },
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			claims, err := verifier.Verify(context.Background(), tc.token())

			if tc.wantErr {
				require.ErrorIs(t, err, model.ErrInvalidToken)
				require.Nil(t, claims)

				return
			}

			require.NoError(t, err)
			require.Equal(t, "user-42", claims.Subject)
			require.Equal(t, "alice", claims.Username)
			require.Equal(t, []string{"openid", "profile"}, claims.Scopes)
			require.Equal(t, []string{"storefront"}, claims.Audience)
			require.Equal(t, "token-1", claims.TokenID)
			require.False(t, claims.IsExpired(time.Now()))
		})
	}
}

func TestRemoteKeySet_RefreshesOnUnknownKeyID(t *testing.T) {
	t.Parallel()

	first := mustRSAKey(t)
	rotated := mustRSAKey(t)

	iss := newIssuer(t, jose.JSONWebKey{Key: &first.PublicKey, KeyID: "k1", Algorithm: "RS256", Use: "sig"})
	keys := iss.keySet(0)

	key, err := keys.Lookup(context.Background(), "k1", "RS256")
	require.NoError(t, err)
	require.True(t, first.PublicKey.Equal(key))
	require.Equal(t, int32(1), iss.fetches.Load())

	// Cached: no second fetch.
	_, err = keys.Lookup(context.Background(), "k1", "RS256")
	require.NoError(t, err)
	require.Equal(t, int32(1), iss.fetches.Load())

	iss.publish(
		jose.JSONWebKey{Key: &first.PublicKey, KeyID: "k1", Algorithm: "RS256", Use: "sig"},
		jose.JSONWebKey{Key: &rotated.PublicKey, KeyID: "k2", Algorithm: "RS256", Use: "sig"},
	)

	key, err = keys.Lookup(context.Background(), "k2", "RS256")
	require.NoError(t, err)
	require.True(t, rotated.PublicKey.Equal(key))
	require.Equal(t, int32(2), iss.fetches.Load())
}

func TestRemoteKeySet_RateLimitsRefresh(t *testing.T) {
	t.Parallel()

	rsaKey := mustRSAKey(t)

	iss := newIssuer(t, jose.JSONWebKey{Key: &rsaKey.PublicKey, KeyID: "k1", Algorithm: "RS256", Use: "sig"})
	keys := iss.keySet(time.Hour)

	for range 3 {
		_, err := keys.Lookup(context.Background(), "unknown", "RS256")
		require.ErrorIs(t, err, model.ErrKeyNotFound)
	}

	require.Equal(t, int32(1), iss.fetches.Load())

	require.NoError(t, keys.Refresh(context.Background()))
	require.Equal(t, int32(2), iss.fetches.Load())
}

func TestRemoteKeySet_IgnoresMismatchedKeys(t *testing.T) {
	t.Parallel()

	rsaKey := mustRSAKey(t)

	iss := newIssuer(t,
		jose.JSONWebKey{Key: &rsaKey.PublicKey, KeyID: "enc", Algorithm: "RSA-OAEP", Use: "enc"},
		jose.JSONWebKey{Key: &rsaKey.PublicKey, KeyID: "sig", Algorithm: "RS256", Use: "sig"},
	)
	keys := iss.keySet(time.Hour)

	_, err := keys.Lookup(context.Background(), "enc", "RS256")
	require.ErrorIs(t, err, model.ErrKeyNotFound)

	_, err = keys.Lookup(context.Background(), "sig", "ES256")
	require.ErrorIs(t, err, model.ErrKeyNotFound)

	key, err := keys.Lookup(context.Background(), "sig", "RS256")
	require.NoError(t, err)
	require.True(t, rsaKey.PublicKey.Equal(key))
}

func TestRemoteKeySet_FetchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	keys := jwks.NewRemoteKeySet(jwks.RemoteConfig{
		URL:        server.URL,
		MaxRetries: 3,
	}, server.Client(), logger.NewTestLogger())

	_, err := keys.Lookup(context.Background(), "k1", "RS256")
	require.ErrorContains(t, err, "unexpected status 404")
}

func TestStaticKeySet(t *testing.T) {
	t.Parallel()

	keys := jwks.NewStaticKeySet("")

	_, err := keys.Lookup(context.Background(), "", "HS256")
	require.ErrorIs(t, err, model.ErrKeyNotFound)

	keys.Rotate("s3cret")

	key, err := keys.Lookup(context.Background(), "", "HS256")
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), key)

	_, err = keys.Lookup(context.Background(), "", "RS256")
	require.ErrorIs(t, err, model.ErrKeyNotFound)
}

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	_, err := jwks.Chain{}.Lookup(context.Background(), "k", "RS256")
	require.ErrorIs(t, err, model.ErrKeyNotFound)
}
