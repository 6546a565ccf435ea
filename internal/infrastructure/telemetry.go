package infrastructure

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

const (
	exporterTypeGRPC   = "grpc"
	exporterTypeStdOut = "stdout"
)

type (
	// Tracing owns the SDK provider and whatever connection its exporter holds.
	Tracing struct {
		provider *sdktrace.TracerProvider
		release  func() error
	}

	spanExporterFactory func(ctx context.Context, cfg config.Telemetry) (sdktrace.SpanExporter, func() error, error)
)

var spanExporters = map[string]spanExporterFactory{
	exporterTypeGRPC:   newCollectorExporter,
	exporterTypeStdOut: newStdOutExporter,
}

// NewTracing builds the gateway tracer provider, tags its resource with the
// route table it serves, and installs it globally with the W3C propagators.
func NewTracing(
	ctx context.Context,
	appConfig config.App,
	telemetryConfig config.Telemetry,
	routes *model.RouteTable,
) (*Tracing, error) {
	factory, ok := spanExporters[strings.ToLower(telemetryConfig.ExporterType)]
	if !ok {
		return nil, fmt.Errorf("unsupported exporter type %q", telemetryConfig.ExporterType)
	}

	exporter, release, err := factory(ctx, telemetryConfig)
	if err != nil {
		return nil, err
	}

	res, err := gatewayResource(ctx, appConfig, telemetryConfig, routes)
	if err != nil {
		return nil, errors.Join(err, release())
	}

	sampler := sdktrace.TraceIDRatioBased(telemetryConfig.Traces.SamplerRatio)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sampler,
			sdktrace.WithRemoteParentSampled(sampler),
		)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracing{provider: provider, release: release}, nil
}

func (t *Tracing) Provider() trace.TracerProvider {
	return t.provider
}

// Shutdown flushes buffered spans before closing the exporter connection.
func (t *Tracing) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.provider.ForceFlush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flushing spans: %w", err))
	}

	if err := t.provider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping tracer provider: %w", err))
	}

	if err := t.release(); err != nil {
		errs = append(errs, fmt.Errorf("closing collector connection: %w", err))
	}

	return errors.Join(errs...)
}

// NewNoopTracerProvider creates a no-op tracer provider for when tracing is disabled.
func NewNoopTracerProvider() trace.TracerProvider {
	return noop.NewTracerProvider()
}

func gatewayResource(
	ctx context.Context,
	appConfig config.App,
	telemetryConfig config.Telemetry,
	routes *model.RouteTable,
) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(appConfig.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		semconv.DeploymentEnvironment(appConfig.Env.Name),
		attribute.String("commit_sha", config.CommitSHA),
	}

	if telemetryConfig.OtelProductCluster != "" {
		attrs = append(attrs, attribute.String("Product-Cluster", telemetryConfig.OtelProductCluster))
	}

	attrs = append(attrs, routeAttributes(routes)...)

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("describing tracer resource: %w", err)
	}

	return res, nil
}

// routeAttributes summarizes the route table: how many routes and breakers
// it declares and which upstream hosts it forwards to.
func routeAttributes(routes *model.RouteTable) []attribute.KeyValue {
	if routes == nil {
		return nil
	}

	declared := routes.Routes()
	hosts := make([]string, 0, len(declared))

	for _, route := range declared {
		host := route.Upstream
		if parsed, err := url.Parse(route.Upstream); err == nil && parsed.Host != "" {
			host = parsed.Host
		}

		if !slices.Contains(hosts, host) {
			hosts = append(hosts, host)
		}
	}

	slices.Sort(hosts)

	return []attribute.KeyValue{
		attribute.Int("gateway.routes", len(declared)),
		attribute.Int("gateway.breakers", len(routes.BreakerNames())),
		attribute.StringSlice("gateway.upstreams", hosts),
	}
}

func newCollectorExporter(ctx context.Context, cfg config.Telemetry) (sdktrace.SpanExporter, func() error, error) {
	address, secure := collectorAddress(cfg)

	creds := insecure.NewCredentials()
	if secure {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to the trace collector at %s: %w", address, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("creating the OTLP trace exporter: %w", err), conn.Close())
	}

	return exporter, conn.Close, nil
}

func newStdOutExporter(context.Context, config.Telemetry) (sdktrace.SpanExporter, func() error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("creating the stdout trace exporter: %w", err)
	}

	return exporter, func() error { return nil }, nil
}

// collectorAddress prefers the standard OTLP endpoint over host and port.
// An https endpoint asks for TLS.
func collectorAddress(cfg config.Telemetry) (string, bool) {
	if cfg.OTLPEndpoint != "" {
		if endpoint, ok := strings.CutPrefix(cfg.OTLPEndpoint, "https://"); ok {
			return endpoint, true
		}

		return strings.TrimPrefix(cfg.OTLPEndpoint, "http://"), false
	}

	return net.JoinHostPort(cfg.OtelGRPCHost, cfg.OtelGRPCPort), false
}
