package model

import (
	"io"
	"net/http"
)

// Outcome is what a forwarded call reports to its circuit breaker.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}

	return "failure"
}

// ClassifyStatus maps an upstream status code to an outcome; only 2xx succeeds.
func ClassifyStatus(statusCode int) Outcome {
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return OutcomeSuccess
	}

	return OutcomeFailure
}

// UpstreamRequest is a request ready to be forwarded to a route's upstream.
type UpstreamRequest struct {
	Method        string
	URL           string
	Header        http.Header
	Body          io.Reader
	ContentLength int64
	RemoteAddr    string
	Host          string
	TLS           bool
}

// UpstreamResponse is a fully buffered upstream response.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *UpstreamResponse) Outcome() Outcome {
	return ClassifyStatus(r.StatusCode)
}

// ForwardResult is what the gateway relays for a matched route.
type ForwardResult struct {
	Route    Route
	Response *UpstreamResponse
}
