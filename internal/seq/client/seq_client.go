package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qiniu/seqmcp/internal/config"
	"github.com/qiniu/seqmcp/internal/observability"
	"github.com/qiniu/seqmcp/internal/seq/model"
	"github.com/rs/zerolog/log"
)

const (
	apiKeyHeader = "X-Seq-ApiKey"

	endpointEvents  = "/api/events"
	endpointEvent   = "/api/events/{id}"
	endpointSignals = "/api/signals"
	endpointSignal  = "/api/signals/{id}"
	endpointHealth  = "/api/health"

	// cap on how much of an error body is kept in a TransportError
	maxErrorBody = 4096
)

// SeqClient issues read-only requests against the Seq HTTP API. It holds
// no state between calls and is safe for concurrent use.
type SeqClient struct {
	baseURL      string
	apiKey       string
	defaultLimit int
	httpClient   *http.Client
	metrics      *observability.MetricsCollector
}

type Option func(*SeqClient)

// WithHTTPClient replaces the default client. The configured timeout is not
// applied to a caller-provided client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *SeqClient) { c.httpClient = hc }
}

func WithMetrics(m *observability.MetricsCollector) Option {
	return func(c *SeqClient) { c.metrics = m }
}

// NewSeqClient creates a client for the server described by cfg.
func NewSeqClient(cfg config.SeqConfig, opts ...Option) *SeqClient {
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = 100
	}
	c := &SeqClient{
		baseURL:      strings.TrimSuffix(cfg.URL, "/"),
		apiKey:       cfg.APIKey,
		defaultLimit: limit,
		httpClient:   &http.Client{Timeout: cfg.TimeoutDuration()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address without a trailing slash.
func (c *SeqClient) BaseURL() string { return c.baseURL }

// SearchEvents queries /api/events. Unset options are omitted from the
// query string; Count falls back to the configured default page size and
// Render defaults to true.
func (c *SeqClient) SearchEvents(ctx context.Context, opts model.SearchOptions) (*model.SearchResult, error) {
	var result model.SearchResult
	if err := c.getJSON(ctx, "search events", endpointEvents, endpointEvents, searchParams(opts, c.defaultLimit), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Query runs a search with filter taking precedence over opts.Filter.
func (c *SeqClient) Query(ctx context.Context, filter string, opts model.SearchOptions) (*model.SearchResult, error) {
	opts.Filter = filter
	return c.SearchEvents(ctx, opts)
}

func (c *SeqClient) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	path := endpointEvents + "/" + url.PathEscape(id)
	if err := c.getJSON(ctx, "get event", endpointEvent, path, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *SeqClient) GetSignals(ctx context.Context) ([]model.Signal, error) {
	var signals []model.Signal
	if err := c.getJSON(ctx, "get signals", endpointSignals, endpointSignals, nil, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

func (c *SeqClient) GetSignal(ctx context.Context, id string) (*model.Signal, error) {
	var signal model.Signal
	path := endpointSignals + "/" + url.PathEscape(id)
	if err := c.getJSON(ctx, "get signal", endpointSignal, path, nil, &signal); err != nil {
		return nil, err
	}
	return &signal, nil
}

// GetHealthStatus probes /api/health. It never fails: any error is
// reported as an unhealthy status with a best-effort message.
func (c *SeqClient) GetHealthStatus(ctx context.Context) model.HealthStatus {
	err := c.getJSON(ctx, "health check", endpointHealth, endpointHealth, nil, nil)
	if err == nil {
		return model.HealthStatus{Status: model.Healthy}
	}

	log.Warn().Err(err).Str("seq_url", c.baseURL).Msg("seq health check failed")

	message := err.Error()
	var te *model.TransportError
	if errors.As(err, &te) && te.Body != "" {
		if m := bodyMessage(te.Body); m != "" {
			message = m
		}
	}
	if message == "" {
		message = "Unknown error"
	}
	return model.HealthStatus{Status: model.Unhealthy, Message: message}
}

func searchParams(opts model.SearchOptions, defaultLimit int) url.Values {
	params := url.Values{}

	count := opts.Count
	if count <= 0 {
		count = defaultLimit
	}
	params.Set("count", strconv.Itoa(count))

	render := opts.Render == nil || *opts.Render
	params.Set("render", strconv.FormatBool(render))

	setIfNotEmpty(params, "filter", opts.Filter)
	setIfNotEmpty(params, "startAt", opts.StartAt)
	setIfNotEmpty(params, "afterId", opts.AfterID)
	setIfNotEmpty(params, "signal", opts.Signal)
	setIfNotEmpty(params, "fromDateUtc", opts.FromDateUTC)
	setIfNotEmpty(params, "toDateUtc", opts.ToDateUTC)
	return params
}

func setIfNotEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// getJSON performs one GET and decodes the body into out (skipped when out
// is nil). endpoint is the route template used for metrics.
func (c *SeqClient) getJSON(ctx context.Context, op, endpoint, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &model.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(endpoint, 0, time.Since(start))
		return &model.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamRequest(endpoint, resp.StatusCode, time.Since(start))
	log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("seq request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &model.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &model.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// bodyMessage extracts a "message" field from a JSON error body.
func bodyMessage(body string) string {
	var payload struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"Error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.ErrorMessage
}
