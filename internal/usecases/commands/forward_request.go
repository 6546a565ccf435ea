package commands

import (
	"context"
	"io"
	"net/http"
	"net/url"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/decorator"
	"github.com/architeacher/storefront-gateway/pkg/logger"
	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

type (
	// ForwardRequestCommand carries an inbound request that passed the edge
	// checks and has to be routed to an upstream.
	ForwardRequestCommand struct {
		Method        string
		URL           *url.URL
		Header        http.Header
		Body          io.Reader
		ContentLength int64
		RemoteAddr    string
		Host          string
		TLS           bool
	}

	ForwardRequestCommandHandler = decorator.CommandHandler[ForwardRequestCommand, *model.ForwardResult]

	forwardRequestCommandHandler struct {
		gateway ports.Gateway
	}
)

func NewForwardRequestCommandHandler(
	gateway ports.Gateway,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ForwardRequestCommandHandler {
	return decorator.ApplyCommandDecorators[ForwardRequestCommand, *model.ForwardResult](
		forwardRequestCommandHandler{gateway: gateway},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h forwardRequestCommandHandler) Handle(ctx context.Context, cmd ForwardRequestCommand) (*model.ForwardResult, error) {
	route, err := h.gateway.Resolve(cmd.Method, cmd.URL.Path)
	if err != nil {
		return nil, err
	}

	ctx = logger.ContextWithRoute(ctx, route.Name)

	resp, err := h.gateway.Forward(ctx, route, model.UpstreamRequest{
		Method:        cmd.Method,
		URL:           route.Target(cmd.URL),
		Header:        cmd.Header,
		Body:          cmd.Body,
		ContentLength: cmd.ContentLength,
		RemoteAddr:    cmd.RemoteAddr,
		Host:          cmd.Host,
		TLS:           cmd.TLS,
	})
	if err != nil {
		return nil, err
	}

	return &model.ForwardResult{Route: route, Response: resp}, nil
}
