package model

// SignalFilter is one filter clause of a saved search.
type SignalFilter struct {
	Filter          string `json:"Filter,omitempty"`
	FilterNonStrict string `json:"FilterNonStrict,omitempty"`
	Description     string `json:"Description,omitempty"`
}

// Signal is a saved search stored on the Seq server.
type Signal struct {
	ID          string         `json:"Id"`
	Title       string         `json:"Title"`
	Description string         `json:"Description,omitempty"`
	Filters     []SignalFilter `json:"Filters"`
}
