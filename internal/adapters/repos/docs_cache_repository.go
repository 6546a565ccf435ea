package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/infrastructure"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

const (
	docsCacheVersion = "v1"
	docsKeyPrefix    = "docs:" + docsCacheVersion + ":"
)

type (
	cachedDocSummary struct {
		Name       string `json:"name"`
		URL        string `json:"url"`
		Title      string `json:"title,omitempty"`
		Version    string `json:"version,omitempty"`
		OpenAPI    string `json:"openapi,omitempty"`
		PathCount  int    `json:"path_count"`
		Valid      bool   `json:"valid"`
		Error      string `json:"error,omitempty"`
		StatusCode int    `json:"status_code,omitempty"`
	}

	cachedDocsIndex struct {
		GeneratedAt time.Time          `json:"generated_at"`
		Services    []cachedDocSummary `json:"services"`
		ETag        string             `json:"etag"`
	}

	// DocsCacheRepository implements ports.DocsCache on KeyDB.
	DocsCacheRepository struct {
		client *infrastructure.KeydbClient
		logger logger.Logger
	}
)

func NewDocsCacheRepository(client *infrastructure.KeydbClient, log logger.Logger) *DocsCacheRepository {
	return &DocsCacheRepository{
		client: client,
		logger: log,
	}
}

// GetIndex returns the cached index; the bool reports a hit.
func (r *DocsCacheRepository) GetIndex(ctx context.Context, key string) (*model.APIDocsIndex, bool, error) {
	data, err := r.client.Get(ctx, docsKeyPrefix+key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("getting cached docs index: %w", err)
	}

	var cached cachedDocsIndex
	if err := json.Unmarshal(data, &cached); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable docs index")

		return nil, false, fmt.Errorf("unmarshalling cached docs index: %w", err)
	}

	return toDomainDocsIndex(cached), true, nil
}

func (r *DocsCacheRepository) SetIndex(ctx context.Context, key string, index *model.APIDocsIndex, ttl time.Duration) error {
	data, err := json.Marshal(toCachedDocsIndex(index))
	if err != nil {
		return fmt.Errorf("marshalling docs index: %w", err)
	}

	if err := r.client.Set(ctx, docsKeyPrefix+key, data, ttl); err != nil {
		return fmt.Errorf("setting cached docs index: %w", err)
	}

	return nil
}

func (r *DocsCacheRepository) Purge(ctx context.Context, key string) error {
	if err := r.client.Delete(ctx, docsKeyPrefix+key); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("purging cached docs index: %w", err)
	}

	return nil
}

// IsHealthy checks if the cache is available.
func (r *DocsCacheRepository) IsHealthy(ctx context.Context) bool {
	return r.client.IsHealthy(ctx)
}

func toCachedDocsIndex(index *model.APIDocsIndex) cachedDocsIndex {
	cached := cachedDocsIndex{
		GeneratedAt: index.GeneratedAt,
		ETag:        index.ETag,
		Services:    make([]cachedDocSummary, 0, len(index.Services)),
	}

	for _, svc := range index.Services {
		cached.Services = append(cached.Services, cachedDocSummary(svc))
	}

	return cached
}

func toDomainDocsIndex(cached cachedDocsIndex) *model.APIDocsIndex {
	index := &model.APIDocsIndex{
		GeneratedAt: cached.GeneratedAt,
		ETag:        cached.ETag,
		Services:    make([]model.APIDocSummary, 0, len(cached.Services)),
	}

	for _, svc := range cached.Services {
		index.Services = append(index.Services, model.APIDocSummary(svc))
	}

	return index
}
