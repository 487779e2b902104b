package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector_Record(t *testing.T) {
	m := NewMetricsCollector()

	m.RecordToolCall("search_events", OutcomeSuccess, 10*time.Millisecond)
	m.RecordToolCall("search_events", OutcomeSuccess, 20*time.Millisecond)
	m.RecordToolCall("get_event", OutcomeInvalidParams, time.Millisecond)
	m.RecordUpstreamRequest("/api/events", 200, 5*time.Millisecond)
	m.RecordUpstreamRequest("/api/health", 0, time.Second)
	m.RecordHTTPRequestDuration("POST", "/mcp", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("search_events", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("get_event", OutcomeInvalidParams)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("/api/events", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("/api/health", "error")))

	families, err := m.GetRegistry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["seqmcp_tool_call_duration_seconds"])
	assert.True(t, names["seqmcp_http_request_duration_seconds"])
	assert.True(t, names["go_goroutines"])
}

func TestMetricsCollector_NilIsNoop(t *testing.T) {
	var m *MetricsCollector
	assert.NotPanics(t, func() {
		m.RecordToolCall("x", OutcomeSuccess, time.Millisecond)
		m.RecordUpstreamRequest("/api/events", 500, time.Millisecond)
		m.RecordHTTPRequestDuration("GET", "/", 200, time.Millisecond)
	})
	assert.Nil(t, m.GetRegistry())
}
