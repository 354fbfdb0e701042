package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrNoCVOnFile is returned when the existing-CV path is used without a CV on file
	ErrNoCVOnFile = errors.New("no CV on file")

	// ErrSessionClosed is returned when a completion arrives after its owner was closed
	ErrSessionClosed = errors.New("session closed")
)

// NetworkError is a connectivity or transport-level failure
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response or a backend-reported failure
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: server error: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: server error (%d): %s", e.Op, e.Status, e.Message)
}

// ValidationError rejects input before any network call
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// StateConflictError rejects an action the current state does not allow
type StateConflictError struct {
	Msg     string
	Missing []DocumentType
}

func (e *StateConflictError) Error() string {
	if len(e.Missing) == 0 {
		return e.Msg
	}
	names := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		names = append(names, string(m))
	}
	return fmt.Sprintf("%s: missing %s", e.Msg, strings.Join(names, ", "))
}

// ErrorKind buckets errors by how the caller should react
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindNetwork    ErrorKind = "network"
	KindServer     ErrorKind = "server"
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindUnknown    ErrorKind = "unknown"
)

// Recovery lists the affordances offered next to an error
type Recovery string

const (
	RecoveryNone        Recovery = ""
	RecoveryRetry       Recovery = "retry"
	RecoveryRetryOrHome Recovery = "retry_or_home"
)

// Classify maps err onto the error taxonomy
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		netErr      *NetworkError
		srvErr      *ServerError
		validErr    *ValidationError
		conflictErr *StateConflictError
		urlErr      *url.Error
		opErr       net.Error
	)

	switch {
	case errors.As(err, &validErr):
		return KindValidation
	case errors.As(err, &conflictErr):
		return KindConflict
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &srvErr):
		return KindServer
	case errors.As(err, &urlErr), errors.As(err, &opErr), errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "network") || strings.Contains(msg, "failed to fetch") {
		return KindNetwork
	}
	return KindUnknown
}

// IsRetryable reports whether retrying the same call may succeed
func IsRetryable(err error) bool {
	switch Classify(err) {
	case KindNetwork, KindServer, KindUnknown:
		return true
	}
	return false
}

// RecoveryFor tells the caller which recovery controls to show
func RecoveryFor(err error) Recovery {
	switch Classify(err) {
	case KindNetwork:
		return RecoveryRetryOrHome
	case KindServer, KindUnknown:
		return RecoveryRetry
	}
	return RecoveryNone
}

// UserMessage renders a human-readable message for err
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindNetwork:
		return "Network error: unable to reach the job board. Check your connection and try again."
	case KindServer:
		var srvErr *ServerError
		if errors.As(err, &srvErr) && srvErr.Message != "" {
			return "The server could not complete the request: " + srvErr.Message
		}
		return "The server could not complete the request. Please try again."
	case KindValidation, KindConflict:
		return err.Error()
	}
	return "Something went wrong. Please try again."
}
