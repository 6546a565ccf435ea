package public

import (
	"net/http"
	"time"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/internal/usecases/queries"
)

const docsCacheControl = "public, max-age=30"

type (
	swaggerURL struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	swaggerConfigResponse struct {
		URLs []swaggerURL `json:"urls"`
	}

	apiDocSummary struct {
		Name       string `json:"name"`
		URL        string `json:"url"`
		Title      string `json:"title,omitempty"`
		Version    string `json:"version,omitempty"`
		OpenAPI    string `json:"openapi,omitempty"`
		PathCount  int    `json:"pathCount"`
		Valid      bool   `json:"valid"`
		Error      string `json:"error,omitempty"`
		StatusCode int    `json:"statusCode,omitempty"`
	}

	apiDocsIndexResponse struct {
		GeneratedAt time.Time       `json:"generatedAt"`
		Services    []apiDocSummary `json:"services"`
	}

	// DocsHandler serves the swagger-ui configuration and the aggregated
	// index of upstream OpenAPI documents.
	DocsHandler struct {
		app      *usecases.WebApplication
		services []model.ServiceDocs
	}
)

func NewDocsHandler(app *usecases.WebApplication, services []model.ServiceDocs) *DocsHandler {
	return &DocsHandler{
		app:      app,
		services: services,
	}
}

func (h *DocsHandler) SwaggerConfig(w http.ResponseWriter, _ *http.Request) {
	urls := make([]swaggerURL, 0, len(h.services))

	for _, service := range h.services {
		urls = append(urls, swaggerURL{Name: service.Name, URL: service.Path})
	}

	shared.WriteJSON(w, http.StatusOK, swaggerConfigResponse{URLs: urls})
}

func (h *DocsHandler) AggregateDocs(w http.ResponseWriter, r *http.Request) {
	index, err := h.app.Queries.FetchAPIDocs.Execute(r.Context(), queries.FetchAPIDocsQuery{})
	if err != nil {
		shared.WriteError(w, r, http.StatusServiceUnavailable, shared.CodeServiceUnavailable, "aggregating API docs")

		return
	}

	w.Header().Set(shared.HeaderETag, index.ETag)
	w.Header().Set(shared.HeaderCacheControl, docsCacheControl)

	if shared.ETagMatches(r, index.ETag) {
		w.WriteHeader(http.StatusNotModified)

		return
	}

	services := make([]apiDocSummary, 0, len(index.Services))
	for _, summary := range index.Services {
		services = append(services, apiDocSummary(summary))
	}

	shared.WriteJSON(w, http.StatusOK, apiDocsIndexResponse{
		GeneratedAt: index.GeneratedAt,
		Services:    services,
	})
}
