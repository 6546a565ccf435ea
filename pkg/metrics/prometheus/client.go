// Package prometheus implements metrics.Client on top of a dedicated
// Prometheus registry exposed through promhttp.
package prometheus

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/storefront-gateway/pkg/metrics"
)

const histogramSuffix = "_seconds"

type (
	MetricsClient struct {
		namespace   string
		registry    *prometheus.Registry
		descriptors map[string]metrics.Descriptor

		mu         sync.Mutex
		counters   map[string]*counterVec
		histograms map[string]*histogramVec
	}

	Option func(*MetricsClient)

	counterVec struct {
		vec    *prometheus.CounterVec
		labels []string
	}

	histogramVec struct {
		vec    *prometheus.HistogramVec
		labels []string
	}
)

// WithNamespace prefixes every metric name.
func WithNamespace(namespace string) Option {
	return func(c *MetricsClient) {
		c.namespace = namespace
	}
}

// WithDescriptors sets help texts for known metric names.
func WithDescriptors(descriptors map[string]metrics.Descriptor) Option {
	return func(c *MetricsClient) {
		for name, descriptor := range descriptors {
			c.descriptors[name] = descriptor
		}
	}
}

func NewMetricsClient(opts ...Option) *MetricsClient {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := &MetricsClient{
		registry:    registry,
		descriptors: make(map[string]metrics.Descriptor),
		counters:    make(map[string]*counterVec),
		histograms:  make(map[string]*histogramVec),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Inc adds value to the counter named key, or observes it when key ends in
// "_seconds". The label names are fixed by the first observation of a key;
// later observations fill missing labels with "" and drop unknown ones.
func (c *MetricsClient) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	amount, ok := metrics.ToFloat64(value)
	if !ok {
		return
	}

	name := sanitize(key)

	if strings.HasSuffix(name, histogramSuffix) {
		histogram := c.histogram(name, attributes)
		if histogram == nil {
			return
		}

		histogram.vec.WithLabelValues(labelValues(histogram.labels, attributes)...).Observe(amount)

		return
	}

	if amount < 0 {
		return
	}

	counter := c.counter(name, attributes)
	if counter == nil {
		return
	}

	counter.vec.WithLabelValues(labelValues(counter.labels, attributes)...).Add(amount)
}

func (c *MetricsClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *MetricsClient) Shutdown(_ context.Context) error {
	return nil
}

// Registry exposes the underlying registry for collectors registered elsewhere.
func (c *MetricsClient) Registry() *prometheus.Registry {
	return c.registry
}

func (c *MetricsClient) counter(name string, attributes []attribute.KeyValue) *counterVec {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.counters[name]; ok {
		return existing
	}

	labels := labelNames(attributes)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      c.help(name),
	}, labels)

	if err := c.registry.Register(vec); err != nil {
		return nil
	}

	registered := &counterVec{vec: vec, labels: labels}
	c.counters[name] = registered

	return registered
}

func (c *MetricsClient) histogram(name string, attributes []attribute.KeyValue) *histogramVec {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.histograms[name]; ok {
		return existing
	}

	labels := labelNames(attributes)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      c.help(name),
		Buckets:   prometheus.DefBuckets,
	}, labels)

	if err := c.registry.Register(vec); err != nil {
		return nil
	}

	registered := &histogramVec{vec: vec, labels: labels}
	c.histograms[name] = registered

	return registered
}

func (c *MetricsClient) help(name string) string {
	if descriptor, ok := c.descriptors[name]; ok && descriptor.Description != "" {
		return descriptor.Description
	}

	return strings.ReplaceAll(name, "_", " ")
}

func labelNames(attributes []attribute.KeyValue) []string {
	names := make([]string, 0, len(attributes))
	seen := make(map[string]struct{}, len(attributes))

	for _, attr := range attributes {
		name := sanitize(string(attr.Key))
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

func labelValues(names []string, attributes []attribute.KeyValue) []string {
	values := make([]string, len(names))

	for _, attr := range attributes {
		name := sanitize(string(attr.Key))

		for i, label := range names {
			if label == name {
				values[i] = attr.Value.Emit()

				break
			}
		}
	}

	return values
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
