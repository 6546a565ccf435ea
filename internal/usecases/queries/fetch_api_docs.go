package queries

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/getkin/kin-openapi/openapi3"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/decorator"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

type (
	FetchAPIDocsQuery struct{}

	FetchAPIDocsQueryHandler = decorator.QueryHandler[FetchAPIDocsQuery, *model.APIDocsIndex]

	// fetchAPIDocsQueryHandler loads every service's document through the
	// gateway's own routes, so each fetch is guarded by the service's
	// swagger breaker.
	fetchAPIDocsQueryHandler struct {
		gateway ports.Gateway
		docs    []model.ServiceDocs
		now     func() time.Time
	}
)

func NewFetchAPIDocsQueryHandler(
	gateway ports.Gateway,
	docs []model.ServiceDocs,
	cache decorator.Cache[FetchAPIDocsQuery, *model.APIDocsIndex],
	cacheConfig decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchAPIDocsQueryHandler {
	var handler FetchAPIDocsQueryHandler = fetchAPIDocsQueryHandler{
		gateway: gateway,
		docs:    docs,
		now:     time.Now,
	}

	if cache != nil {
		handler = decorator.NewQueryCachingDecorator(handler, cache, cacheConfig)
	}

	return decorator.ApplyQueryDecorators[FetchAPIDocsQuery, *model.APIDocsIndex](
		handler,
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchAPIDocsQueryHandler) Execute(ctx context.Context, _ FetchAPIDocsQuery) (*model.APIDocsIndex, error) {
	summaries := make([]model.APIDocSummary, len(h.docs))

	var wg sync.WaitGroup

	for i, docs := range h.docs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			summaries[i] = h.summarize(ctx, docs)
		}()
	}

	wg.Wait()

	return &model.APIDocsIndex{
		GeneratedAt: h.now().UTC(),
		Services:    summaries,
		ETag:        docsETag(summaries),
	}, nil
}

func (h fetchAPIDocsQueryHandler) summarize(ctx context.Context, docs model.ServiceDocs) model.APIDocSummary {
	summary := model.APIDocSummary{Name: docs.Name, URL: docs.Path}

	route, err := h.gateway.Resolve(http.MethodGet, docs.Path)
	if err != nil {
		summary.Error = err.Error()
		summary.StatusCode = http.StatusNotFound

		return summary
	}

	resp, err := h.gateway.Forward(ctx, route, model.UpstreamRequest{
		Method: http.MethodGet,
		URL:    route.Target(&url.URL{Path: docs.Path}),
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		summary.Error = err.Error()
		summary.StatusCode = http.StatusServiceUnavailable

		return summary
	}

	summary.StatusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		summary.Error = "upstream answered " + strconv.Itoa(resp.StatusCode)

		return summary
	}

	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(resp.Body)
	if err != nil {
		summary.Error = fmt.Sprintf("parsing document: %v", err)

		return summary
	}

	summary.OpenAPI = doc.OpenAPI

	if doc.Info != nil {
		summary.Title = doc.Info.Title
		summary.Version = doc.Info.Version
	}

	if doc.Paths != nil {
		summary.PathCount = doc.Paths.Len()
	}

	if err := doc.Validate(ctx); err != nil {
		summary.Error = fmt.Sprintf("invalid document: %v", err)

		return summary
	}

	summary.Valid = true

	return summary
}

// docsETag fingerprints the index content, leaving out the generation time.
func docsETag(summaries []model.APIDocSummary) string {
	digest := xxhash.New()

	for _, s := range summaries {
		_, _ = fmt.Fprintf(digest, "%s|%s|%s|%s|%s|%d|%t|%d|%s\n",
			s.Name, s.URL, s.Title, s.Version, s.OpenAPI, s.PathCount, s.Valid, s.StatusCode, s.Error)
	}

	return fmt.Sprintf(`"%016x"`, digest.Sum64())
}
