package ports

import (
	"context"
	"time"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

// DocsCache stores the aggregated API docs index.
type DocsCache interface {
	GetIndex(ctx context.Context, key string) (*model.APIDocsIndex, bool, error)
	SetIndex(ctx context.Context, key string, index *model.APIDocsIndex, ttl time.Duration) error
	Purge(ctx context.Context, key string) error
}
