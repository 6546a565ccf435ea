package decorator

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/architeacher/storefront-gateway/pkg/decorator"

type (
	commandTracingDecorator[C Command, R any] struct {
		base           CommandHandler[C, R]
		tracerProvider otelTrace.TracerProvider
	}

	queryTracingDecorator[Q Query, R Result] struct {
		base           QueryHandler[Q, R]
		tracerProvider otelTrace.TracerProvider
	}
)

func (d commandTracingDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	if d.tracerProvider == nil {
		return d.base.Handle(ctx, cmd)
	}

	ctx, span := d.tracerProvider.Tracer(tracerName).Start(ctx, "command."+generateActionName(cmd))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryTracingDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	if d.tracerProvider == nil {
		return d.base.Execute(ctx, query)
	}

	ctx, span := d.tracerProvider.Tracer(tracerName).Start(ctx, "query."+generateActionName(query))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	return d.base.Execute(ctx, query)
}

func recordSpanError(span otelTrace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")

		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
