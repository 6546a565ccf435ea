package repos

import (
	"context"
	"time"

	"github.com/throttled/throttled/v2"

	"github.com/architeacher/storefront-gateway/internal/infrastructure"
)

const (
	rateLimitKeyPrefix = "ratelimit:"
)

// RateLimitStore implements throttled.GCRAStoreCtx using KeydbClient so that
// every gateway replica shares the same buckets.
type RateLimitStore struct {
	client *infrastructure.KeydbClient
	prefix string
}

// NewRateLimitStore creates a new rate limit store.
func NewRateLimitStore(client *infrastructure.KeydbClient) (throttled.GCRAStoreCtx, error) {
	return &RateLimitStore{
		client: client,
		prefix: rateLimitKeyPrefix,
	}, nil
}

// GetWithTime returns the stored value, or -1 when the key does not exist,
// together with the current time.
func (s *RateLimitStore) GetWithTime(ctx context.Context, key string) (int64, time.Time, error) {
	now := time.Now()

	value, found, err := s.client.GetInt64(ctx, s.prefix+key)
	if err != nil {
		return 0, now, err
	}

	if !found {
		return -1, now, nil
	}

	return value, now, nil
}

// SetIfNotExistsWithTTL sets a value if the key doesn't exist.
func (s *RateLimitStore) SetIfNotExistsWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return s.client.SetInt64NX(ctx, s.prefix+key, value, ttl)
}

// CompareAndSwapWithTTL atomically updates a value if it matches the expected old value.
func (s *RateLimitStore) CompareAndSwapWithTTL(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	return s.client.CompareAndSwapInt64(ctx, s.prefix+key, old, new, ttl)
}
