package flow

import (
	"errors"
	"strings"
)

var (
	// ErrBusy rejects a transition while another one is still in flight for
	// the same session (double-tap protection).
	ErrBusy = errors.New("another transition is in flight")

	// ErrInvalidTransition rejects an operation called outside the step it
	// belongs to.
	ErrInvalidTransition = errors.New("operation not valid in current step")

	// ErrSessionReset marks a backend response that arrived after the session
	// it belonged to was reset. The response is discarded, never applied.
	ErrSessionReset = errors.New("session was reset while the call was in flight")

	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError reports user input that fails local constraints. The step
// does not advance; fields are surfaced to the client.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return e.Reason + ": " + strings.Join(e.Fields, ", ")
	}
	return e.Reason
}

// RemoteError wraps a failed backend call. The step does not advance and the
// same transition may be retried.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
