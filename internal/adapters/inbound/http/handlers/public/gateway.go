package public

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/internal/usecases/commands"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

const (
	FallbackMessage = "Service is currently unavailable. Please try again later."

	breakerStateOpen = "open"
)

type GatewayHandler struct {
	app *usecases.WebApplication
	log logger.Logger
}

func NewGatewayHandler(app *usecases.WebApplication, log logger.Logger) *GatewayHandler {
	return &GatewayHandler{
		app: app,
		log: log.WithComponent("gateway"),
	}
}

// Proxy resolves the route for the request, forwards it through the route's
// circuit breaker and relays the upstream response.
func (h *GatewayHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Commands.ForwardRequest.Handle(r.Context(), commands.ForwardRequestCommand{
		Method:        r.Method,
		URL:           r.URL,
		Header:        r.Header,
		Body:          r.Body,
		ContentLength: r.ContentLength,
		RemoteAddr:    r.RemoteAddr,
		Host:          r.Host,
		TLS:           r.TLS != nil,
	})
	if err != nil {
		h.writeForwardError(w, r, err)

		return
	}

	relay(w, result.Response)
}

// Fallback is the fixed degraded response served when an upstream cannot be used.
func (h *GatewayHandler) Fallback(w http.ResponseWriter, _ *http.Request) {
	WriteFallback(w)
}

func (h *GatewayHandler) writeForwardError(w http.ResponseWriter, r *http.Request, err error) {
	var breakerErr *model.BreakerOpenError

	switch {
	case errors.Is(err, model.ErrRouteNotFound):
		shared.WriteError(w, r, http.StatusNotFound, shared.CodeNotFound,
			fmt.Sprintf("no route matches %s %s", r.Method, r.URL.Path))
	case errors.As(err, &breakerErr):
		w.Header().Set(middleware.CircuitBreakerHeader, breakerErr.Breaker)
		w.Header().Set(middleware.CircuitBreakerStateHeader, breakerStateOpen)
		WriteFallback(w)
	default:
		reqLogger := h.log.WithContext(r.Context())
		reqLogger.Warn().Err(err).Msg("serving fallback for failed upstream call")
		WriteFallback(w)
	}
}

func WriteFallback(w http.ResponseWriter) {
	w.Header().Set(shared.HeaderContentType, shared.ContentTypeTextPlain)
	w.Header().Set(shared.HeaderCacheControl, "no-store")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(FallbackMessage))
}

func relay(w http.ResponseWriter, resp *model.UpstreamResponse) {
	header := resp.Header.Clone()
	middleware.StripCORSHeaders(header)

	shared.CopyHeaders(w.Header(), header)
	w.WriteHeader(resp.StatusCode)

	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
