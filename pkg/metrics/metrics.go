// Package metrics wires OpenTelemetry instruments to the Prometheus registry
// and defines the instruments recorded by the scan pipeline.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// MeterName is the instrumentation scope used by all pipeline instruments.
const MeterName = "phishguard"

// NewMeterProvider creates an OpenTelemetry meter provider whose readings are
// exported through the given Prometheus registerer.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Lookup holds the instruments recorded around threat provider lookups.
type Lookup struct {
	lookups   metric.Int64Counter
	cacheHits metric.Int64Counter
	latency   metric.Float64Histogram
}

// NewLookup registers the lookup instruments on meter.
func NewLookup(meter metric.Meter) (*Lookup, error) {
	lookups, err := meter.Int64Counter("phishguard.threat.lookups",
		metric.WithDescription("Threat provider lookups by outcome"))
	if err != nil {
		return nil, fmt.Errorf("could not create lookups counter: %w", err)
	}
	cacheHits, err := meter.Int64Counter("phishguard.threat.cache.hits",
		metric.WithDescription("Threat lookups answered from the in-process cache"))
	if err != nil {
		return nil, fmt.Errorf("could not create cache hits counter: %w", err)
	}
	latency, err := meter.Float64Histogram("phishguard.threat.lookup.duration",
		metric.WithDescription("Latency of threat provider lookups"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create lookup latency histogram: %w", err)
	}

	return &Lookup{lookups: lookups, cacheHits: cacheHits, latency: latency}, nil
}

// Observe records a finished provider round trip. outcome is "ok" or the
// semantic error kind of the failure.
func (l *Lookup) Observe(ctx context.Context, outcome string, took time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	l.lookups.Add(ctx, 1, attrs)
	l.latency.Record(ctx, took.Seconds(), attrs)
}

// CacheHit records a lookup served from cache.
func (l *Lookup) CacheHit(ctx context.Context) {
	l.cacheHits.Add(ctx, 1)
}

// Verdicts counts classifier outcomes.
type Verdicts struct {
	verdicts metric.Int64Counter
}

// NewVerdicts registers the verdict counter on meter.
func NewVerdicts(meter metric.Meter) (*Verdicts, error) {
	verdicts, err := meter.Int64Counter("phishguard.verdicts",
		metric.WithDescription("Scan verdicts by input kind and status"))
	if err != nil {
		return nil, fmt.Errorf("could not create verdicts counter: %w", err)
	}

	return &Verdicts{verdicts: verdicts}, nil
}

// Record counts one verdict.
func (v *Verdicts) Record(ctx context.Context, kind, status string) {
	v.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status)))
}
