// Package errors provides structured error types and exit codes for dotsible.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the dotsible commands.
const (
	ExitSuccess      = 0 // Success
	ExitRuntimeError = 1 // Runtime error (I/O failure, malformed event stream, etc.)
	ExitUsageError   = 1 // Wrong arguments; the merge command contract fixes this at 1
	ExitConfigError  = 2 // Configuration error (unreadable or invalid config file)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindUsage
	KindDecode
	KindIO
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindUsage:
		return "usage"
	case KindDecode:
		return "decode"
	case KindIO:
		return "io"
	default:
		return "runtime"
	}
}

// DotsibleError is the base error type for dotsible.
type DotsibleError struct {
	Kind    ErrorKind
	Message string
	Path    string // File path if applicable
	Line    int    // 1-based line number in an event stream, 0 if not applicable
	Cause   error  // Underlying error
}

func (e *DotsibleError) Error() string {
	msg := e.Message
	switch {
	case e.Path != "" && e.Line > 0:
		msg = fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	case e.Line > 0:
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.Path != "":
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *DotsibleError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *DotsibleError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindUsage:
		return ExitUsageError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *DotsibleError {
	return &DotsibleError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *DotsibleError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string, cause error) *DotsibleError {
	return &DotsibleError{
		Kind:    KindConfig,
		Message: message,
		Cause:   cause,
	}
}

// Usage creates a new usage error.
func Usage(message string) *DotsibleError {
	return &DotsibleError{
		Kind:    KindUsage,
		Message: message,
	}
}

// Decode creates an error for an unreadable event stream record.
func Decode(line int, message string, cause error) *DotsibleError {
	return &DotsibleError{
		Kind:    KindDecode,
		Message: message,
		Line:    line,
		Cause:   cause,
	}
}

// IO creates an error for a failed file operation on path.
func IO(path, message string, cause error) *DotsibleError {
	return &DotsibleError{
		Kind:    KindIO,
		Message: message,
		Path:    path,
		Cause:   cause,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *DotsibleError {
	return &DotsibleError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// IsKind reports whether err (or anything it wraps) is a DotsibleError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var de *DotsibleError
	if errors.As(err, &de) {
		return de.Kind == k
	}
	return false
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var de *DotsibleError
	if errors.As(err, &de) {
		return de.ExitCode()
	}
	return ExitRuntimeError
}
