package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the reasoning service could not be reached.
	ErrUnavailable = errors.New("reasoning service unavailable")

	// ErrTimeout indicates a single attempt exceeded its deadline.
	ErrTimeout = errors.New("reasoning request timed out")

	// ErrInvalidOutput indicates the response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid reasoning output format")

	// ErrRetryExhausted indicates all attempts failed with retryable errors.
	ErrRetryExhausted = errors.New("reasoning retry attempts exhausted")

	// ErrFatalRequest indicates the service rejected the request itself
	// (bad request, auth failure); retrying cannot help.
	ErrFatalRequest = errors.New("reasoning request rejected")

	errEmptyCompletion = errors.New("reasoning service returned no content")
)

// ErrorKind is the outcome reported to callers once the client gives up.
type ErrorKind string

const (
	KindExhausted ErrorKind = "exhausted"
	KindFatal     ErrorKind = "fatal"
)

// FailureKind classifies a single failed attempt.
type FailureKind string

const (
	FailureConnection FailureKind = "connection"
	FailureTimeout    FailureKind = "timeout"
	FailureUpstream   FailureKind = "upstream"
	FailureRequest    FailureKind = "request"
)

// Retryable reports whether another attempt may succeed.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureConnection, FailureTimeout, FailureUpstream:
		return true
	default:
		return false
	}
}

// ReasoningError is returned by Generate when no usable reply was produced.
type ReasoningError struct {
	Kind     ErrorKind
	Cause    FailureKind
	Attempts int
	Err      error
}

func (e *ReasoningError) Error() string {
	return fmt.Sprintf("reasoning %s after %d attempt(s) (%s): %v", e.Kind, e.Attempts, e.Cause, e.Err)
}

func (e *ReasoningError) Unwrap() error {
	return e.Err
}

// Is lets callers match on the sentinel for the error kind.
func (e *ReasoningError) Is(target error) bool {
	switch target {
	case ErrRetryExhausted:
		return e.Kind == KindExhausted
	case ErrFatalRequest:
		return e.Kind == KindFatal
	case ErrUnavailable:
		return e.Cause == FailureConnection
	}
	return false
}

func errorCode(err error) string {
	var re *ReasoningError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &re):
		switch re.Cause {
		case FailureTimeout:
			return "TIMEOUT"
		case FailureConnection:
			return "UNAVAILABLE"
		case FailureUpstream:
			return "UPSTREAM"
		case FailureRequest:
			return "REQUEST"
		}
		return "UNKNOWN"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}
