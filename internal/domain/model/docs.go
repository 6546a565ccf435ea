package model

import "time"

type (
	// ServiceDocs points at one upstream's OpenAPI document.
	ServiceDocs struct {
		Name string
		// Path is the gateway path serving the document, e.g. /order-service/api-docs.
		Path string
	}

	// APIDocSummary describes one upstream document in the aggregate index.
	APIDocSummary struct {
		Name       string
		URL        string
		Title      string
		Version    string
		OpenAPI    string
		PathCount  int
		Valid      bool
		Error      string
		StatusCode int
	}

	// APIDocsIndex is the aggregate of every upstream document.
	APIDocsIndex struct {
		GeneratedAt time.Time
		Services    []APIDocSummary
		ETag        string
	}
)
