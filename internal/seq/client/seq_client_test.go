package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/qiniu/seqmcp/internal/config"
	"github.com/qiniu/seqmcp/internal/observability"
	"github.com/qiniu/seqmcp/internal/seq/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, apiKey string, opts ...Option) *SeqClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSeqClient(config.SeqConfig{URL: srv.URL + "/", APIKey: apiKey, DefaultLimit: 100, Timeout: "2000"}, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewSeqClient_StripsTrailingSlash(t *testing.T) {
	c := NewSeqClient(config.SeqConfig{URL: "http://seq.local:5341/"})
	assert.Equal(t, "http://seq.local:5341", c.BaseURL())
	assert.Equal(t, 100, c.defaultLimit)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestSearchEvents_QueryParameters(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeJSON(w, http.StatusOK, model.SearchResult{
			Events:     []model.Event{{ID: "event-1", Level: model.LevelError}},
			Statistics: model.Statistics{ElapsedMilliseconds: 12, ScannedEventCount: 340},
		})
	}, "secret")

	result, err := c.SearchEvents(context.Background(), model.SearchOptions{
		Filter:      "Level = 'Error'",
		Count:       50,
		FromDateUTC: "2024-01-01T00:00:00.000Z",
		Signal:      "signal-1",
	})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "event-1", result.Events[0].ID)
	assert.Equal(t, int64(340), result.Statistics.ScannedEventCount)

	require.NotNil(t, got)
	assert.Equal(t, "/api/events", got.URL.Path)
	assert.Equal(t, "secret", got.Header.Get("X-Seq-ApiKey"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))

	q := got.URL.Query()
	assert.Equal(t, "50", q.Get("count"))
	assert.Equal(t, "true", q.Get("render"))
	assert.Equal(t, "Level = 'Error'", q.Get("filter"))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", q.Get("fromDateUtc"))
	assert.Equal(t, "signal-1", q.Get("signal"))
	for _, absent := range []string{"startAt", "afterId", "toDateUtc"} {
		_, ok := q[absent]
		assert.False(t, ok, "%s should be omitted", absent)
	}
}

func TestSearchEvents_DefaultsAndRenderFalse(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeJSON(w, http.StatusOK, model.SearchResult{})
	}, "")

	render := false
	_, err := c.SearchEvents(context.Background(), model.SearchOptions{Render: &render})
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "100", q.Get("count"))
	assert.Equal(t, "false", q.Get("render"))
	_, hasFilter := q["filter"]
	assert.False(t, hasFilter)
	assert.Empty(t, got.Header.Get("X-Seq-ApiKey"))
}

func TestQuery_OverridesFilter(t *testing.T) {
	var filter string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		filter = r.URL.Query().Get("filter")
		writeJSON(w, http.StatusOK, model.SearchResult{})
	}, "")

	_, err := c.Query(context.Background(), "Application = 'api'", model.SearchOptions{Filter: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Application = 'api'", filter)
}

func TestSearchEvents_Non2xxIsTransportError(t *testing.T) {
	metrics := observability.NewMetricsCollector()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad filter syntax", http.StatusBadRequest)
	}, "", WithMetrics(metrics))

	_, err := c.SearchEvents(context.Background(), model.SearchOptions{Filter: "Level =="})
	require.Error(t, err)

	var te *model.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Contains(t, err.Error(), "bad filter syntax")
	assert.False(t, model.IsNotFound(err))

	count, err := testutil.GatherAndCount(metrics.GetRegistry(), "seqmcp_upstream_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events/event-42" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"Id":              "event-42",
			"TimeStamp":       "2024-05-01T10:00:00.000Z",
			"Level":           "Warning",
			"MessageTemplate": "Disk {Drive} low",
			"RenderedMessage": "Disk C: low",
			"Properties":      map[string]any{"Drive": "C:"},
		})
	}, "")

	event, err := c.GetEvent(context.Background(), "event-42")
	require.NoError(t, err)
	assert.Equal(t, model.LevelWarning, event.Level)
	assert.Equal(t, "Disk {Drive} low", event.MessageTemplate)
	assert.Equal(t, "C:", event.Properties["Drive"])
	assert.Empty(t, event.Exception)

	_, err = c.GetEvent(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestGetSignals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/signals":
			writeJSON(w, http.StatusOK, []model.Signal{
				{ID: "signal-1", Title: "Errors", Filters: []model.SignalFilter{{Filter: "@Level = 'Error'"}}},
				{ID: "signal-2", Title: "API", Description: "api only"},
			})
		case "/api/signals/signal-2":
			writeJSON(w, http.StatusOK, model.Signal{ID: "signal-2", Title: "API"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, "")

	signals, err := c.GetSignals(context.Background())
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Len(t, signals[0].Filters, 1)
	assert.Equal(t, "api only", signals[1].Description)

	signal, err := c.GetSignal(context.Background(), "signal-2")
	require.NoError(t, err)
	assert.Equal(t, "API", signal.Title)
}

func TestGetSignals_DecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}, "")

	_, err := c.GetSignals(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestGetHealthStatus(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]string{"status": "The Seq node is in service."})
		}, "")
		status := c.GetHealthStatus(context.Background())
		assert.Equal(t, model.Healthy, status.Status)
		assert.Empty(t, status.Message)
	})

	t.Run("message from body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "node is starting"})
		}, "")
		status := c.GetHealthStatus(context.Background())
		assert.Equal(t, model.Unhealthy, status.Status)
		assert.Equal(t, "node is starting", status.Message)
	})

	t.Run("plain body falls back to error text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "maintenance", http.StatusBadGateway)
		}, "")
		status := c.GetHealthStatus(context.Background())
		assert.Equal(t, model.Unhealthy, status.Status)
		assert.Contains(t, status.Message, "502")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		c := NewSeqClient(config.SeqConfig{URL: srv.URL, Timeout: "50"})
		status := c.GetHealthStatus(context.Background())
		assert.Equal(t, model.Unhealthy, status.Status)
		assert.NotEmpty(t, status.Message)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := NewSeqClient(config.SeqConfig{URL: url})
		status := c.GetHealthStatus(context.Background())
		assert.Equal(t, model.Unhealthy, status.Status)
		assert.NotEmpty(t, status.Message)
	})
}
