package llm

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse = errors.New("empty response from backend")
	// ErrTruncated is returned alongside the partial Completion when the
	// backend stopped at its output token limit.
	ErrTruncated = errors.New("response truncated at max tokens")
)

// StatusError carries the upstream HTTP status so callers can classify it with
// httpx.IsRetryableError.
type StatusError struct {
	Backend string
	Status  int
	Err     error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: status %d: %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: status %d", e.Backend, e.Status)
}

func (e *StatusError) Unwrap() error       { return e.Err }
func (e *StatusError) HTTPStatusCode() int { return e.Status }
