// Package observe provides observability primitives for sfxgen: OpenTelemetry
// metrics, tracing, and trace-aware structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// bridges them to a private Prometheus registry so that a one-shot batch run
// can leave its metrics behind as a node-exporter textfile. Tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all sfxgen metrics.
const meterName = "github.com/MrWong99/sfxgen"

// Clip outcome values for the "status" attribute.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusFailed    = "failed"
)

// Metrics holds all OpenTelemetry metric instruments for the generator.
// All fields are safe for concurrent use.
type Metrics struct {
	// RenderDuration tracks how long synthesizing one clip takes.
	RenderDuration metric.Float64Histogram

	// WriteDuration tracks encoding plus the atomic file write of one clip.
	WriteDuration metric.Float64Histogram

	// Clips counts processed clips. Use with attribute:
	//   attribute.String("status", ...)
	Clips metric.Int64Counter

	// Frames counts rendered sample frames.
	Frames metric.Int64Counter

	// Bytes counts bytes written to disk.
	Bytes metric.Int64Counter

	// ClipErrors counts failed clips. Use with attribute:
	//   attribute.String("kind", ...)
	ClipErrors metric.Int64Counter
}

// durationBuckets defines histogram bucket boundaries (in seconds) for
// clip rendering and writing, which normally finish in milliseconds.
var durationBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.RenderDuration, err = m.Float64Histogram("sfxgen.clip.render.duration",
		metric.WithDescription("Time spent synthesizing a clip."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.WriteDuration, err = m.Float64Histogram("sfxgen.clip.write.duration",
		metric.WithDescription("Time spent encoding and writing a clip."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Clips, err = m.Int64Counter("sfxgen.clips",
		metric.WithDescription("Total clips processed by status."),
	); err != nil {
		return nil, err
	}
	if met.Frames, err = m.Int64Counter("sfxgen.frames",
		metric.WithDescription("Total sample frames rendered."),
	); err != nil {
		return nil, err
	}
	if met.Bytes, err = m.Int64Counter("sfxgen.bytes",
		metric.WithDescription("Total bytes written to disk."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.ClipErrors, err = m.Int64Counter("sfxgen.clip.errors",
		metric.WithDescription("Total failed clips by error kind."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails (should not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordClip records the outcome of one clip: a status-labelled counter
// increment plus the frames and bytes it produced.
func (m *Metrics) RecordClip(ctx context.Context, status string, frames int, bytes int64) {
	m.Clips.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if frames > 0 {
		m.Frames.Add(ctx, int64(frames))
	}
	if bytes > 0 {
		m.Bytes.Add(ctx, bytes)
	}
}

// RecordClipError records a failed clip under the given error kind.
func (m *Metrics) RecordClipError(ctx context.Context, kind string) {
	m.Clips.Add(ctx, 1, metric.WithAttributes(attribute.String("status", StatusFailed)))
	m.ClipErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
