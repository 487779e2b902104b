package model

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is returned for network failures, timeouts and non-2xx
// responses from Seq. StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		if e.Body != "" {
			return fmt.Sprintf("%s: seq returned status %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: seq returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err carries a 404 from Seq.
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == http.StatusNotFound
}
