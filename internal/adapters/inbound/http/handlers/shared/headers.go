package shared

import (
	"net/http"
	"strings"
)

const (
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderIfNoneMatch  = "If-None-Match"
	HeaderVary         = "Vary"
	HeaderContentType  = "Content-Type"
	HeaderAccept       = "Accept"

	ContentTypeJSON      = "application/json"
	ContentTypeTextPlain = "text/plain; charset=utf-8"
)

// ETagMatches reports whether If-None-Match names the quoted etag, either
// strong, weak, in a list or through the wildcard.
func ETagMatches(r *http.Request, etag string) bool {
	ifNoneMatch := strings.TrimSpace(r.Header.Get(HeaderIfNoneMatch))
	if ifNoneMatch == "" || etag == "" {
		return false
	}

	if ifNoneMatch == "*" {
		return true
	}

	for candidate := range strings.SplitSeq(ifNoneMatch, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}

	return false
}

// CopyHeaders copies src into dst. Headers present in both take the values
// from src.
func CopyHeaders(dst, src http.Header) {
	for name, values := range src {
		dst[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
}
