package youtube

import (
	"errors"
	"fmt"
)

// ErrNoTranscript is returned when a video has no captions available,
// either because they are disabled or were never generated.
var ErrNoTranscript = errors.New("no transcript available")

// FetchError wraps a transport failure or unexpected status code from
// an upstream YouTube endpoint.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s fetch failed: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: status %d", e.Endpoint, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError is returned when an upstream response parses as JSON but
// is missing fields the pipeline depends on.
type SchemaError struct {
	Endpoint string
	Missing  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s response missing %s", e.Endpoint, e.Missing)
}
