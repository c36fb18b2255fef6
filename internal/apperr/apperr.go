// Package apperr provides the coded error type shared by startup and the
// display session.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code int

const (
	Unknown Code = iota
	ConnectFailed
	CaptureUnavailable
	MonitorNotFound
	ShmFailed
	FontUnavailable
	ProtocolUnsupported
	ProtocolError
)

var codeNames = map[Code]string{
	Unknown:             "UNKNOWN",
	ConnectFailed:       "CONNECT_FAILED",
	CaptureUnavailable:  "CAPTURE_UNAVAILABLE",
	MonitorNotFound:     "MONITOR_NOT_FOUND",
	ShmFailed:           "SHM_FAILED",
	FontUnavailable:     "FONT_UNAVAILABLE",
	ProtocolUnsupported: "PROTOCOL_UNSUPPORTED",
	ProtocolError:       "PROTOCOL_ERROR",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CODE(%d)", int(c))
}

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrConnectFailed       = &Error{Code: ConnectFailed}
	ErrCaptureUnavailable  = &Error{Code: CaptureUnavailable}
	ErrMonitorNotFound     = &Error{Code: MonitorNotFound}
	ErrShmFailed           = &Error{Code: ShmFailed}
	ErrFontUnavailable     = &Error{Code: FontUnavailable}
	ErrProtocolUnsupported = &Error{Code: ProtocolUnsupported}
	ErrProtocolError       = &Error{Code: ProtocolError}
)

// Error is the base error type with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New creates an Error without a cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the code from err, or Unknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// ExitCode maps err to a process exit status: 0 for nil, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
