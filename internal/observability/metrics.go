package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "seqmcp"

// Outcome labels for tool calls.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidParams   = "invalid_params"
	OutcomeUnknownTool     = "unknown_tool"
	OutcomeUpstreamFailure = "upstream_error"
)

// MetricsCollector holds the Prometheus collectors of one server instance.
// A nil *MetricsCollector is valid and records nothing.
type MetricsCollector struct {
	registry *prometheus.Registry

	toolCalls        *prometheus.CounterVec
	toolLatency      *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	httpLatency      *prometheus.HistogramVec
}

// NewMetricsCollector creates a collector backed by a private registry
// that also exposes the Go runtime and process collectors.
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool invocations by tool and outcome.",
			},
			[]string{"tool", "outcome"},
		),
		toolLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Tool invocation latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of requests sent to Seq by endpoint and status code.",
			},
			[]string{"endpoint", "status"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Seq request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP transport request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// GetRegistry returns the registry to expose on /metrics.
func (m *MetricsCollector) GetRegistry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *MetricsCollector) RecordToolCall(tool, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolLatency.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordUpstreamRequest records one call to Seq. status is 0 when no
// response was received.
func (m *MetricsCollector) RecordUpstreamRequest(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(endpoint, code).Inc()
	m.upstreamLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsCollector) RecordHTTPRequestDuration(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
