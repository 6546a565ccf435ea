// Package upstream forwards gateway requests to the routed services over HTTP.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
)

const defaultTimeout = 10 * time.Second

var _ ports.UpstreamInvoker = (*Client)(nil)

// Client is a thin HTTP adapter: it performs one call and buffers the
// response. Breaker accounting is done by the service layer.
type Client struct {
	httpClient       *http.Client
	timeout          time.Duration
	maxResponseBytes int64
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return client
}

// Forward performs the call detached from the caller's cancellation: a client
// that goes away does not abort it, only the per-call timeout does. That way
// every attempted call produces exactly one outcome.
func (c *Client) Forward(ctx context.Context, req model.UpstreamRequest) (*model.UpstreamResponse, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", model.ErrUpstreamUnavailable, err)
	}

	if req.Body != nil {
		httpReq.ContentLength = req.ContentLength
	}

	httpReq.Header = outboundHeaders(ctx, req)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, err
	}

	header := resp.Header.Clone()
	removeHopByHopHeaders(header)

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     header,
		Body:       body,
	}, nil
}

func (c *Client) readBody(body io.Reader) ([]byte, error) {
	if c.maxResponseBytes <= 0 {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, classifyTransportError(err)
		}

		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(body, c.maxResponseBytes+1))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if int64(len(data)) > c.maxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", model.ErrResponseTooLarge, c.maxResponseBytes)
	}

	return data, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error

	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", model.ErrUpstreamTimeout, err)
	}

	return fmt.Errorf("%w: %w", model.ErrUpstreamUnavailable, err)
}
