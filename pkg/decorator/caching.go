package decorator

import (
	"context"
	"time"
)

type (
	// CacheStatus represents the status of a cache operation.
	CacheStatus string

	// cacheStatusKey is the context key for cache status.
	cacheStatusKey struct{}

	// CacheConfig holds configuration for the caching decorator.
	CacheConfig struct {
		Enabled bool
		TTL     time.Duration
		// WriteTimeout bounds the background cache write. Zero means one second.
		WriteTimeout time.Duration
		// OnStatus, when set, observes the outcome of every lookup.
		OnStatus func(ctx context.Context, status CacheStatus)
	}

	// CacheGetter retrieves items from cache.
	CacheGetter[Q Query, R Result] interface {
		Get(ctx context.Context, query Q) (R, bool, error)
	}

	// CacheSetter stores items in cache.
	CacheSetter[Q Query, R Result] interface {
		Set(ctx context.Context, query Q, result R, ttl time.Duration) error
	}

	// Cache combines getter and setter operations.
	Cache[Q Query, R Result] interface {
		CacheGetter[Q, R]
		CacheSetter[Q, R]
	}

	queryCachingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		cache  Cache[Q, R]
		config CacheConfig
	}
)

const (
	CacheStatusHit    CacheStatus = "HIT"
	CacheStatusMiss   CacheStatus = "MISS"
	CacheStatusBypass CacheStatus = "BYPASS"
	CacheStatusError  CacheStatus = "ERROR"
)

// WithCacheStatus adds cache status to context.
func WithCacheStatus(ctx context.Context, status CacheStatus) context.Context {
	return context.WithValue(ctx, cacheStatusKey{}, status)
}

// GetCacheStatus retrieves cache status from context.
func GetCacheStatus(ctx context.Context) CacheStatus {
	if status, ok := ctx.Value(cacheStatusKey{}).(CacheStatus); ok {
		return status
	}

	return CacheStatusBypass
}

// NewQueryCachingDecorator creates a new caching decorator for queries.
func NewQueryCachingDecorator[Q Query, R Result](
	base QueryHandler[Q, R],
	cache Cache[Q, R],
	config CacheConfig,
) QueryHandler[Q, R] {
	return queryCachingDecorator[Q, R]{
		base:   base,
		cache:  cache,
		config: config,
	}
}

func (d queryCachingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	var zero R

	if !d.config.Enabled || d.cache == nil {
		d.observe(ctx, CacheStatusBypass)

		return d.base.Execute(WithCacheStatus(ctx, CacheStatusBypass), query)
	}

	cached, hit, err := d.cache.Get(ctx, query)
	if err == nil && hit {
		d.observe(ctx, CacheStatusHit)

		return cached, nil
	}

	status := CacheStatusMiss
	if err != nil {
		status = CacheStatusError
	}

	d.observe(ctx, status)

	result, err := d.base.Execute(WithCacheStatus(ctx, status), query)
	if err != nil {
		return zero, err
	}

	writeTimeout := d.config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = time.Second
	}

	go func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()

		_ = d.cache.Set(ctx, query, result, d.config.TTL)
	}(context.WithoutCancel(ctx))

	return result, nil
}

func (d queryCachingDecorator[Q, R]) observe(ctx context.Context, status CacheStatus) {
	if d.config.OnStatus != nil {
		d.config.OnStatus(ctx, status)
	}
}
