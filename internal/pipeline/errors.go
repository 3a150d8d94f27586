package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmitInProgress is returned when a submit is attempted while another
// one is still waiting for the backend.
var ErrSubmitInProgress = errors.New("a forecast request is already in progress")

// ErrClosed is returned by Submit once the pipeline has been closed.
var ErrClosed = errors.New("forecast session has been closed")

// ValidationError reports required slots without a file. No request is made.
type ValidationError struct {
	Missing []Slot
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, s := range e.Missing {
		names[i] = string(s)
	}
	return fmt.Sprintf("missing required files: %s", strings.Join(names, ", "))
}

// TransportError wraps a failure to obtain a usable response: network
// errors, unexpected status codes and bodies that are not JSON.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("forecast request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerReportedError carries the message of a top-level "error" field in the
// backend response.
type ServerReportedError struct {
	Message string
}

func (e *ServerReportedError) Error() string {
	return e.Message
}
