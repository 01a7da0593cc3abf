// Package observe provides application-wide observability primitives for
// vocalops: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all vocalops metrics.
const meterName = "github.com/nullshift/vocalops"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// TranscriberDuration tracks per-segment speech-to-text latency.
	TranscriberDuration metric.Float64Histogram

	// LLMDuration tracks intent-proposal LLM inference latency.
	LLMDuration metric.Float64Histogram

	// ToolExecutionDuration tracks tool/MCP call execution latency.
	ToolExecutionDuration metric.Float64Histogram

	// RouterDecisionDuration tracks the router's end-to-end
	// proposal-to-decision latency (debounce window included).
	RouterDecisionDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ToolCalls counts tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// TranscriptsCommitted counts finalized transcript segments. Use with
	// attribute: attribute.String("mode", ...)
	TranscriptsCommitted metric.Int64Counter

	// AudioChunksDropped counts audio frames dropped due to bus or
	// transcriber backpressure. Use with attribute:
	//   attribute.String("stage", ...)
	AudioChunksDropped metric.Int64Counter

	// SequenceGaps counts detected gaps in the audio bus sequence numbers
	// observed by a listener.
	SequenceGaps metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live pipeline sessions (normally
	// 0 or 1 for this single-user pipeline, but kept as a counter so
	// multiple supervised instances can share one meter).
	ActiveSessions metric.Int64UpDownCounter

	// CircuitBreakersOpen tracks the number of currently open resilience
	// circuit breakers across every fallback chain.
	CircuitBreakersOpen metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for voice-pipeline latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranscriberDuration, err = m.Float64Histogram("vocalops.transcriber.duration",
		metric.WithDescription("Latency of per-segment speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("vocalops.llm.duration",
		metric.WithDescription("Latency of intent-proposal LLM inference."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ToolExecutionDuration, err = m.Float64Histogram("vocalops.tool_execution.duration",
		metric.WithDescription("Latency of tool/MCP call execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RouterDecisionDuration, err = m.Float64Histogram("vocalops.router.decision.duration",
		metric.WithDescription("Latency from committed transcript to router decision."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("vocalops.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("vocalops.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptsCommitted, err = m.Int64Counter("vocalops.transcripts.committed",
		metric.WithDescription("Total finalized transcript segments by mode."),
	); err != nil {
		return nil, err
	}
	if met.AudioChunksDropped, err = m.Int64Counter("vocalops.audio.chunks_dropped",
		metric.WithDescription("Total audio frames dropped due to backpressure, by stage."),
	); err != nil {
		return nil, err
	}
	if met.SequenceGaps, err = m.Int64Counter("vocalops.audio.sequence_gaps",
		metric.WithDescription("Total detected gaps in the audio bus sequence."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("vocalops.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("vocalops.active_sessions",
		metric.WithDescription("Number of live pipeline sessions."),
	); err != nil {
		return nil, err
	}
	if met.CircuitBreakersOpen, err = m.Int64UpDownCounter("vocalops.circuit_breakers_open",
		metric.WithDescription("Number of currently open resilience circuit breakers."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("vocalops.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest is a convenience method that records a provider
// request counter increment with the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordToolCall is a convenience method that records a tool call counter
// increment with the standard attribute set.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
}

// RecordTranscriptCommitted is a convenience method that records a
// committed-transcript counter increment for the given active mode.
func (m *Metrics) RecordTranscriptCommitted(ctx context.Context, mode string) {
	m.TranscriptsCommitted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("mode", mode)),
	)
}

// RecordAudioChunkDropped is a convenience method that records a dropped
// audio frame counter increment for the given pipeline stage.
func (m *Metrics) RecordAudioChunkDropped(ctx context.Context, stage string) {
	m.AudioChunksDropped.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordSequenceGap is a convenience method that records a detected audio
// bus sequence-number gap for the given listener/stage.
func (m *Metrics) RecordSequenceGap(ctx context.Context, stage string) {
	m.SequenceGaps.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
