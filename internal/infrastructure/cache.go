package infrastructure

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/architeacher/storefront-gateway/internal/config"
	appLogger "github.com/architeacher/storefront-gateway/pkg/logger"
)

// compareAndSwapScript swaps an integer value only when it still holds the
// expected one, which the GCRA rate limiter store relies on.
var compareAndSwapScript = redis.NewScript(`
	local current = redis.call("GET", KEYS[1])
	if current == false or tonumber(current) ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

// KeydbClient is the KeyDB (redis protocol) client shared by the docs cache
// and the distributed rate limiter.
type KeydbClient struct {
	client *redis.Client
	logger appLogger.Logger
	config config.Cache
}

func NewKeyDBClient(config config.Cache, logger appLogger.Logger) *KeydbClient {
	opts := &redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           int(config.DB),
		PoolSize:     int(config.PoolSize),
		MinIdleConns: int(config.MinIdleConns),
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
		MaxRetries:   int(config.MaxRetries),
	}

	return &KeydbClient{
		client: redis.NewClient(opts),
		logger: logger.WithComponent("keydb"),
		config: config,
	}
}

func (c *KeydbClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *KeydbClient) Close() error {
	return c.client.Close()
}

// Get returns redis.Nil when the key does not exist.
func (c *KeydbClient) Get(ctx context.Context, key string) ([]byte, error) {
	startTime := time.Now()

	result, err := c.client.Get(ctx, key).Bytes()

	c.logger.Debug().
		Str("key", key).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("hit", err == nil).
		Msg("keydb get operation")

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}

		c.logger.Error().
			Err(err).
			Str("key", key).
			Msg("keydb get operation failed")

		return nil, err
	}

	return result, nil
}

// Set stores value under key. A zero ttl falls back to the configured default expiry.
func (c *KeydbClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.DefaultExpiry
	}

	startTime := time.Now()
	var err error

	defer func() {
		c.logger.Debug().
			Str("key", key).
			Str("expiry", ttl.String()).
			Int64("duration_ms", time.Since(startTime).Milliseconds()).
			Bool("success", err == nil).
			Msg("keydb set operation")
	}()

	err = c.client.Set(ctx, key, value, ttl).Err()

	return err
}

func (c *KeydbClient) Delete(ctx context.Context, key string) error {
	startTime := time.Now()
	var err error

	defer func() {
		c.logger.Debug().
			Str("key", key).
			Int64("duration_ms", time.Since(startTime).Milliseconds()).
			Bool("success", err == nil).
			Msg("keydb delete operation")
	}()

	err = c.client.Del(ctx, key).Err()

	return err
}

// IsHealthy checks if the cache is available.
func (c *KeydbClient) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return c.Ping(ctx) == nil
}

// GetInt64 retrieves an int64 value; found is false when the key does not exist.
func (c *KeydbClient) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return val, true, nil
}

// SetInt64NX sets an int64 value if the key doesn't exist.
func (c *KeydbClient) SetInt64NX(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

// CompareAndSwapInt64 atomically updates a value if it matches the expected old value.
func (c *KeydbClient) CompareAndSwapInt64(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	result, err := compareAndSwapScript.Run(ctx, c.client, []string{key}, old, new, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}
