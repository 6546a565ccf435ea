package upstream

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

const (
	HeaderRequestID     = "Request-Id"
	HeaderCorrelationID = "Correlation-Id"

	headerForwardedFor   = "X-Forwarded-For"
	headerForwardedProto = "X-Forwarded-Proto"
	headerForwardedHost  = "X-Forwarded-Host"

	maxIDLength = 128
)

// hopByHopHeaders apply to a single connection and are never relayed.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// removeHopByHopHeaders drops the standard hop-by-hop headers and every
// header the Connection header names.
func removeHopByHopHeaders(header http.Header) {
	for _, value := range header.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				header.Del(name)
			}
		}
	}

	for _, name := range hopByHopHeaders {
		header.Del(name)
	}
}

func outboundHeaders(ctx context.Context, req model.UpstreamRequest) http.Header {
	header := req.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	removeHopByHopHeaders(header)

	if clientIP := remoteIP(req.RemoteAddr); clientIP != "" {
		if prior := header.Values(headerForwardedFor); len(prior) > 0 {
			clientIP = strings.Join(prior, ", ") + ", " + clientIP
		}

		header.Set(headerForwardedFor, clientIP)
	}

	proto := "http"
	if req.TLS {
		proto = "https"
	}

	if header.Get(headerForwardedProto) == "" {
		header.Set(headerForwardedProto, proto)
	}

	if req.Host != "" && header.Get(headerForwardedHost) == "" {
		header.Set(headerForwardedHost, req.Host)
	}

	propagateID(header, HeaderRequestID, logger.RequestIDFromContext(ctx))
	propagateID(header, HeaderCorrelationID, logger.CorrelationIDFromContext(ctx))

	return header
}

func propagateID(header http.Header, name, id string) {
	if id == "" {
		return
	}

	if len(id) > maxIDLength {
		id = id[:maxIDLength]
	}

	header.Set(name, id)
}

func remoteIP(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
