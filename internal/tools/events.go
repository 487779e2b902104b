package tools

import (
	"context"
	"fmt"

	"github.com/qiniu/seqmcp/internal/seq/model"
)

type EventSummary struct {
	ID         string         `json:"id"`
	Timestamp  string         `json:"timestamp"`
	Level      model.Level    `json:"level"`
	Message    string         `json:"message"`
	Properties map[string]any `json:"properties"`
	Exception  string         `json:"exception,omitempty"`
}

type SearchEventsResult struct {
	Events     []EventSummary   `json:"events"`
	Count      int              `json:"count"`
	Statistics model.Statistics `json:"statistics"`
}

type EventDetail struct {
	ID              string         `json:"id"`
	Timestamp       string         `json:"timestamp"`
	Level           model.Level    `json:"level"`
	MessageTemplate string         `json:"messageTemplate"`
	Message         string         `json:"message"`
	Properties      map[string]any `json:"properties"`
	Exception       string         `json:"exception,omitempty"`
}

// BuildFilter conjoins a user filter with a level clause.
func BuildFilter(query, level string) string {
	if level == "" {
		return query
	}
	clause := fmt.Sprintf("Level = '%s'", level)
	if query == "" {
		return clause
	}
	return query + " and " + clause
}

func (d *Dispatcher) searchEvents(ctx context.Context, raw map[string]any) (any, error) {
	args := SearchEventsArgs{Count: defaultSearchCount}
	if err := decodeArgs(ToolSearchEvents, raw, &args); err != nil {
		return nil, err
	}

	result, err := d.source.SearchEvents(ctx, model.SearchOptions{
		Filter:      BuildFilter(args.Query, args.Level),
		Count:       args.Count,
		FromDateUTC: args.FromDate,
		ToDateUTC:   args.ToDate,
	})
	if err != nil {
		return nil, err
	}

	events := make([]EventSummary, 0, len(result.Events))
	for _, e := range result.Events {
		events = append(events, EventSummary{
			ID:         e.ID,
			Timestamp:  e.Timestamp,
			Level:      e.Level,
			Message:    e.RenderedMessage,
			Properties: e.Properties,
			Exception:  e.Exception,
		})
	}

	return SearchEventsResult{
		Events:     events,
		Count:      len(events),
		Statistics: result.Statistics,
	}, nil
}

func (d *Dispatcher) getEvent(ctx context.Context, raw map[string]any) (any, error) {
	var args GetEventArgs
	if err := decodeArgs(ToolGetEvent, raw, &args); err != nil {
		return nil, err
	}

	e, err := d.source.GetEvent(ctx, args.EventID)
	if err != nil {
		return nil, err
	}

	return EventDetail{
		ID:              e.ID,
		Timestamp:       e.Timestamp,
		Level:           e.Level,
		MessageTemplate: e.MessageTemplate,
		Message:         e.RenderedMessage,
		Properties:      e.Properties,
		Exception:       e.Exception,
	}, nil
}
