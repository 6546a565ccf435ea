package repos

import (
	"context"
	"time"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/internal/usecases/queries"
)

const aggregateDocsKey = "aggregate"

// FetchAPIDocsCacheAdapter adapts DocsCache for FetchAPIDocsQuery.
type FetchAPIDocsCacheAdapter struct {
	cache ports.DocsCache
}

func NewFetchAPIDocsCacheAdapter(cache ports.DocsCache) *FetchAPIDocsCacheAdapter {
	return &FetchAPIDocsCacheAdapter{cache: cache}
}

func (a *FetchAPIDocsCacheAdapter) Get(ctx context.Context, _ queries.FetchAPIDocsQuery) (*model.APIDocsIndex, bool, error) {
	return a.cache.GetIndex(ctx, aggregateDocsKey)
}

func (a *FetchAPIDocsCacheAdapter) Set(ctx context.Context, _ queries.FetchAPIDocsQuery, result *model.APIDocsIndex, ttl time.Duration) error {
	return a.cache.SetIndex(ctx, aggregateDocsKey, result, ttl)
}
