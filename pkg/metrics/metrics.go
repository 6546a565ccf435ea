package metrics

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

type (
	// Client records observations keyed by metric name. Values are numeric;
	// the implementation decides between counters and histograms.
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	// Descriptor defines metadata used when registering instruments.
	Descriptor struct {
		Description string
		Unit        string
	}
)

// ToFloat64 converts the numeric values accepted by Client.Inc.
func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
