package model

import "fmt"

// Level is a Seq severity level.
type Level string

const (
	LevelVerbose     Level = "Verbose"
	LevelDebug       Level = "Debug"
	LevelInformation Level = "Information"
	LevelWarning     Level = "Warning"
	LevelError       Level = "Error"
	LevelFatal       Level = "Fatal"
)

// Levels lists every level from least to most severe.
var Levels = []Level{LevelVerbose, LevelDebug, LevelInformation, LevelWarning, LevelError, LevelFatal}

// ParseLevel accepts only the six known level names.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// Rank orders levels by severity. Unknown levels rank above Fatal.
func (l Level) Rank() int {
	for i, known := range Levels {
		if known == l {
			return i
		}
	}
	return len(Levels)
}

// IsErrorOrWorse reports whether l is Error or Fatal.
func (l Level) IsErrorOrWorse() bool {
	return l == LevelError || l == LevelFatal
}

// Event is a single log event as returned by /api/events.
type Event struct {
	ID              string         `json:"Id"`
	Timestamp       string         `json:"TimeStamp"`
	Level           Level          `json:"Level"`
	MessageTemplate string         `json:"MessageTemplate"`
	RenderedMessage string         `json:"RenderedMessage"`
	Properties      map[string]any `json:"Properties"`
	Exception       string         `json:"Exception,omitempty"`
}

// Statistics are the scan statistics Seq reports for a query.
type Statistics struct {
	ElapsedMilliseconds float64 `json:"ElapsedMilliseconds"`
	ScannedEventCount   int64   `json:"ScannedEventCount"`
}

type SearchResult struct {
	Events     []Event    `json:"Events"`
	Statistics Statistics `json:"Statistics"`
}

// SearchOptions maps onto the /api/events query string. Empty fields are
// left out of the request; a nil Render means true.
type SearchOptions struct {
	Filter      string
	Count       int
	StartAt     string
	AfterID     string
	Signal      string
	Render      *bool
	FromDateUTC string
	ToDateUTC   string
}
