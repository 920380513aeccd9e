package upstream

import (
	"errors"
	"fmt"
)

// ErrNotFound marks the distinguished "endpoint not found" case the rates
// save path surfaces with its own message.
var ErrNotFound = errors.New("upstream: endpoint not found")

// Error describes a failed upstream call. Transport failures have StatusCode 0.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same call later could succeed:
// transport failures and 5xx responses are retryable, 4xx are not.
func (e *Error) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// IsTemporary reports whether err is a retryable upstream failure.
func IsTemporary(err error) bool {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Temporary()
	}
	return false
}
