package tools

import (
	"fmt"
	"strings"
)

// ValidationError reports every argument violation of one tool call.
type ValidationError struct {
	Tool       string
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid parameters: " + strings.Join(e.Violations, ", ")
}

// UnknownOperationError is returned for a tool name outside the catalog.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}
