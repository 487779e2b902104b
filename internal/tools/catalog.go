package tools

import "github.com/qiniu/seqmcp/internal/seq/model"

const (
	ToolSearchEvents = "search_events"
	ToolGetEvent     = "get_event"
	ToolAnalyzeLogs  = "analyze_logs"
	ToolListSignals  = "list_signals"
	ToolCheckHealth  = "check_health"
)

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
)

// Param describes one input property of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Enum        []string
	Default     any
	Min         *float64
	Max         *float64
}

// Definition is the declared shape of a tool.
type Definition struct {
	Name        string
	Description string
	Params      []Param
}

// TimeRanges are the accepted analyze_logs windows, shortest first.
var TimeRanges = []string{"1h", "6h", "24h", "7d", "30d"}

func bound(v float64) *float64 { return &v }

func levelNames() []string {
	names := make([]string, len(model.Levels))
	for i, l := range model.Levels {
		names[i] = string(l)
	}
	return names
}

// Catalog returns the definitions of every tool, in listing order.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        ToolSearchEvents,
			Description: "Search for events in Seq logs with powerful filtering",
			Params: []Param{
				{Name: "query", Type: ParamString, Description: `Seq filter expression (e.g. "Level = 'Error'" or "@Message like '%failed%'")`},
				{Name: "count", Type: ParamInteger, Description: "Number of events to return", Default: defaultSearchCount, Min: bound(minSearchCount), Max: bound(maxSearchCount)},
				{Name: "fromDate", Type: ParamString, Description: "Start date in ISO format"},
				{Name: "toDate", Type: ParamString, Description: "End date in ISO format"},
				{Name: "level", Type: ParamString, Description: "Filter by log level", Enum: levelNames()},
			},
		},
		{
			Name:        ToolGetEvent,
			Description: "Get detailed information about a specific log event",
			Params: []Param{
				{Name: "eventId", Type: ParamString, Description: "The ID of the event to retrieve", Required: true},
			},
		},
		{
			Name:        ToolAnalyzeLogs,
			Description: "Analyze log patterns and statistics over a time period",
			Params: []Param{
				{Name: "query", Type: ParamString, Description: "Seq filter expression"},
				{Name: "timeRange", Type: ParamString, Description: "Time range to analyze", Enum: TimeRanges, Default: defaultTimeRange},
				{Name: "groupBy", Type: ParamString, Description: "Property to group results by"},
			},
		},
		{
			Name:        ToolListSignals,
			Description: "List all configured signals (saved searches) in Seq",
		},
		{
			Name:        ToolCheckHealth,
			Description: "Check the health status of the Seq server",
		},
	}
}
