package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qiniu/seqmcp/internal/seq/model"
)

// isoMillis matches the UTC timestamp format Seq and JavaScript clients use.
const isoMillis = "2006-01-02T15:04:05.000Z"

// EventSource is the subset of the Seq client the tools depend on.
type EventSource interface {
	SearchEvents(ctx context.Context, opts model.SearchOptions) (*model.SearchResult, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	GetSignals(ctx context.Context) ([]model.Signal, error)
	GetHealthStatus(ctx context.Context) model.HealthStatus
}

type handlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Dispatcher validates tool arguments, calls Seq and formats the result.
// It keeps no state between calls.
type Dispatcher struct {
	source   EventSource
	now      func() time.Time
	handlers map[string]handlerFunc
}

type Option func(*Dispatcher)

// WithClock overrides the clock used for analysis windows and health
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(source EventSource, opts ...Option) *Dispatcher {
	d := &Dispatcher{source: source, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handlerFunc{
		ToolSearchEvents: d.searchEvents,
		ToolGetEvent:     d.getEvent,
		ToolAnalyzeLogs:  d.analyzeLogs,
		ToolListSignals:  d.listSignals,
		ToolCheckHealth:  d.checkHealth,
	}
	return d
}

// Call runs the named tool and returns its result as indented JSON text.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	handler, ok := d.handlers[name]
	if !ok {
		return "", &UnknownOperationError{Name: name}
	}

	result, err := handler(ctx, args)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format %s result: %w", name, err)
	}
	return string(data), nil
}
