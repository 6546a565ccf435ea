package shared

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/middleware"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"

	// W3C Trace Context traceparent header format components.
	// Format: {version}-{trace-id}-{parent-id}-{trace-flags}
	traceparentVersionLength   = 2
	traceparentSeparatorLength = 1
	traceparentTraceIDLength   = 32
	traceparentParentIDLength  = 16
	traceparentFlagsLength     = 2

	traceparentTraceIDStart = traceparentVersionLength + traceparentSeparatorLength
	traceparentTraceIDEnd   = traceparentTraceIDStart + traceparentTraceIDLength
	traceparentMinLength    = traceparentVersionLength + traceparentSeparatorLength +
		traceparentTraceIDLength + traceparentSeparatorLength +
		traceparentParentIDLength + traceparentSeparatorLength +
		traceparentFlagsLength
)

// ErrorResponse is the body of every error generated by the gateway itself.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
		TraceID:   ExtractTraceID(r),
		Timestamp: time.Now().UTC(),
	})
}

// ExtractTraceID extracts the trace ID from the traceparent header.
// Example: 00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01
func ExtractTraceID(r *http.Request) string {
	traceparent := r.Header.Get("traceparent")
	if len(traceparent) < traceparentMinLength {
		return ""
	}

	return traceparent[traceparentTraceIDStart:traceparentTraceIDEnd]
}
