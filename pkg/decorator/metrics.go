package decorator

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

const (
	commandsTotalMetric    = "commands_total"
	commandsDurationMetric = "commands_duration_seconds"
	queriesTotalMetric     = "queries_total"
	queriesDurationMetric  = "queries_duration_seconds"
)

type (
	commandMetricsDecorator[C Command, R any] struct {
		base   CommandHandler[C, R]
		client metrics.Client
	}

	queryMetricsDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		client metrics.Client
	}
)

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	start := time.Now()

	actionName := strings.ToLower(generateActionName(cmd))

	defer func() {
		if d.client == nil {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("action", actionName),
			attribute.String("outcome", outcomeLabel(err)),
		}

		d.client.Inc(ctx, commandsDurationMetric, time.Since(start).Seconds(), attrs...)
		d.client.Inc(ctx, commandsTotalMetric, 1, attrs...)
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	start := time.Now()

	actionName := strings.ToLower(generateActionName(query))

	defer func() {
		if d.client == nil {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("action", actionName),
			attribute.String("outcome", outcomeLabel(err)),
		}

		d.client.Inc(ctx, queriesDurationMetric, time.Since(start).Seconds(), attrs...)
		d.client.Inc(ctx, queriesTotalMetric, 1, attrs...)
	}()

	return d.base.Execute(ctx, query)
}

func outcomeLabel(err error) string {
	if err != nil {
		return "failure"
	}

	return "success"
}
