// Package errors defines the error codes of the window and Space subsystem.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

const (
	EUsage         Code = "E_USAGE"
	EInvalidConfig Code = "E_INVALID_CONFIG"
	EUnsupported   Code = "E_UNSUPPORTED"

	// Identity resolution
	EPermissionDenied Code = "E_PERMISSION_DENIED" // process lacks accessibility authorization
	EInvalidElement   Code = "E_INVALID_ELEMENT"   // element no longer references a live object
	ENotAWindow       Code = "E_NOT_A_WINDOW"      // element is not backed by a window
	EResolutionFailed Code = "E_RESOLUTION_FAILED" // any other accessibility status

	// Space management
	EWindowVanished   Code = "E_WINDOW_VANISHED"    // window closed between resolution and use
	EMoveUnconfirmed  Code = "E_MOVE_UNCONFIRMED"   // move request had no observable effect
	EWindowListFailed Code = "E_WINDOW_LIST_FAILED" // existence check could not run
)

// Error is the coded error type used across dashspace.
type Error struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string
}

// Error returns "CODE: message".
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code, so sentinel-style checks
// like errors.Is(err, errors.New(ENotAWindow, "")) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// NewWithDetails creates a new Error with structured context.
// Details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &Error{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new Error wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &Error{Code: code, Msg: msg, Cause: err}
}

// GetCode extracts the error code from an error, or "" if err is not coded.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Retryable reports whether repeating the operation (with fresh inputs)
// can succeed without user action.
func Retryable(err error) bool {
	switch GetCode(err) {
	case EInvalidElement, EMoveUnconfirmed, EWindowListFailed:
		return true
	default:
		return false
	}
}

// UserVisible reports whether the error must reach the end user instead of
// being absorbed as a per-window no-op.
func UserVisible(err error) bool {
	switch GetCode(err) {
	case EPermissionDenied, EUnsupported, EInvalidConfig, EUsage:
		return true
	default:
		return false
	}
}

// ExitCode returns the process exit code for an error: 0 for nil, 2 for
// usage errors, 3 for soft failures and 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case GetCode(err) == EUsage:
		return 2
	case GetCode(err) == EMoveUnconfirmed:
		return 3
	default:
		return 1
	}
}

// Print writes the error to w as:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var e *Error
	if errors.As(err, &e) {
		_, _ = fmt.Fprintf(w, "error_code: %s\n", e.Code)
		_, _ = fmt.Fprintln(w, e.Msg)
		if e.Cause != nil {
			_, _ = fmt.Fprintf(w, "cause: %v\n", e.Cause)
		}
		return
	}
	_, _ = fmt.Fprintln(w, err.Error())
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}
