package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	promModel "github.com/prometheus/common/model"
	"github.com/qiniu/seqmcp/internal/seq/model"
)

const (
	analyzeFetchCount = 1000
	topErrorLimit     = 10
	templateKeyLength = 100
)

type ErrorCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type LevelCount struct {
	Level model.Level
	Count int
}

// LevelCounts is a level histogram ordered by severity. It encodes as a
// JSON object keyed by level name.
type LevelCounts []LevelCount

func (lc LevelCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range lc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(c.Level))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Count returns the number of events at level l.
func (lc LevelCounts) Count(l model.Level) int {
	for _, c := range lc {
		if c.Level == l {
			return c.Count
		}
	}
	return 0
}

// Analysis holds the aggregates computed over one batch of events.
type Analysis struct {
	LevelDistribution LevelCounts
	TopErrors         []ErrorCount
	// Groups is nil unless a grouping property was requested.
	Groups map[string]int
}

type AnalyzeLogsResult struct {
	TimeRange         string                    `json:"timeRange"`
	TotalEvents       int                       `json:"totalEvents"`
	LevelDistribution LevelCounts               `json:"levelDistribution"`
	TopErrors         []ErrorCount              `json:"topErrors"`
	GroupedBy         map[string]map[string]int `json:"groupedBy,omitempty"`
	Statistics        model.Statistics          `json:"statistics"`
}

// TimeRangeDuration converts one of TimeRanges into a duration.
func TimeRangeDuration(label string) (time.Duration, error) {
	for _, r := range TimeRanges {
		if r == label {
			d, err := promModel.ParseDuration(label)
			if err != nil {
				return 0, err
			}
			return time.Duration(d), nil
		}
	}
	return 0, fmt.Errorf("unsupported time range %q", label)
}

func (d *Dispatcher) analyzeLogs(ctx context.Context, raw map[string]any) (any, error) {
	args := AnalyzeLogsArgs{TimeRange: defaultTimeRange}
	if err := decodeArgs(ToolAnalyzeLogs, raw, &args); err != nil {
		return nil, err
	}
	window, err := TimeRangeDuration(args.TimeRange)
	if err != nil {
		return nil, &ValidationError{Tool: ToolAnalyzeLogs, Violations: []string{err.Error()}}
	}

	now := d.now().UTC()
	from := now.Add(-window)

	result, err := d.source.SearchEvents(ctx, model.SearchOptions{
		Filter:      args.Query,
		Count:       analyzeFetchCount,
		FromDateUTC: from.Format(isoMillis),
		ToDateUTC:   now.Format(isoMillis),
	})
	if err != nil {
		return nil, err
	}

	analysis := Analyze(result.Events, args.GroupBy)
	out := AnalyzeLogsResult{
		TimeRange:         args.TimeRange,
		TotalEvents:       len(result.Events),
		LevelDistribution: analysis.LevelDistribution,
		TopErrors:         analysis.TopErrors,
		Statistics:        result.Statistics,
	}
	if args.GroupBy != "" {
		out.GroupedBy = map[string]map[string]int{args.GroupBy: analysis.Groups}
	}
	return out, nil
}

// Analyze counts events per level, ranks the most frequent Error and Fatal
// message templates, and optionally counts values of the groupBy property.
// Templates are keyed by their first 100 characters; equal counts keep the
// order in which the templates were first seen.
func Analyze(events []model.Event, groupBy string) Analysis {
	levels := map[model.Level]int{}
	errorCounts := map[string]int{}
	var errorOrder []string
	var groups map[string]int
	if groupBy != "" {
		groups = map[string]int{}
	}

	for _, e := range events {
		levels[e.Level]++

		if e.Level.IsErrorOrWorse() {
			key := truncateRunes(e.MessageTemplate, templateKeyLength)
			if _, seen := errorCounts[key]; !seen {
				errorOrder = append(errorOrder, key)
			}
			errorCounts[key]++
		}

		if groups != nil {
			if v, ok := e.Properties[groupBy]; ok && v != nil {
				groups[propertyKey(v)]++
			}
		}
	}

	topErrors := make([]ErrorCount, 0, len(errorOrder))
	for _, key := range errorOrder {
		topErrors = append(topErrors, ErrorCount{Message: key, Count: errorCounts[key]})
	}
	sort.SliceStable(topErrors, func(i, j int) bool {
		return topErrors[i].Count > topErrors[j].Count
	})
	if len(topErrors) > topErrorLimit {
		topErrors = topErrors[:topErrorLimit]
	}

	return Analysis{
		LevelDistribution: sortedLevelCounts(levels),
		TopErrors:         topErrors,
		Groups:            groups,
	}
}

func sortedLevelCounts(levels map[model.Level]int) LevelCounts {
	out := make(LevelCounts, 0, len(levels))
	for l, n := range levels {
		out = append(out, LevelCount{Level: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Level.Rank(), out[j].Level.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Level < out[j].Level
	})
	return out
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// propertyKey renders a property value as a grouping key.
func propertyKey(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
