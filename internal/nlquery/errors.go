package nlquery

import (
	"errors"
	"fmt"
)

// ErrPollingTimeout is matched by every PollingTimeoutError. A timeout means the
// outcome is unknown, unlike a session that ended as rejected or failed.
var ErrPollingTimeout = errors.New("polling timeout: query did not complete in time")

// NetworkError is a transport failure or a non-2xx response from the backend.
// Network errors are never retried.
type NetworkError struct {
	Op  string // "submit query", "fetch session", ...
	URL string

	// ServerMessage is the human-readable message from the backend's error
	// body, when it sent one.
	ServerMessage string

	Err error
}

func (e *NetworkError) Error() string {
	if e.ServerMessage != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.ServerMessage)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PollingTimeoutError is returned by Poll when no attempt produced a terminal
// status. It carries no partial result.
type PollingTimeoutError struct {
	SessionID string
	Attempts  int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf(
		"polling timeout: session %s did not complete after %d attempts",
		e.SessionID,
		e.Attempts,
	)
}

func (e *PollingTimeoutError) Is(target error) bool {
	return target == ErrPollingTimeout
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Detail struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	} `json:"detail"`
}
