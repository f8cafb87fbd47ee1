// Package errors provides structured error handling for scuttle
// operations. It defines error codes for the failure taxonomy the
// scanner deals in (connection, privilege, configuration, and packet
// level failures) and utilities for creating and classifying them.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeCanceled      ErrorCode = "CANCELED"

	// Connection-level errors. These arise while probing a single port
	// and are always mapped to a port status, never propagated.
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeConnectionRefused  ErrorCode = "CONNECTION_REFUSED"
	CodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	CodeHostUnreachable    ErrorCode = "HOST_UNREACHABLE"
	CodeNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"

	// Privilege and raw-socket errors.
	CodePermission ErrorCode = "PERMISSION"
	CodeRawSocket  ErrorCode = "RAW_SOCKET"

	// Packet-level errors.
	CodeInvalidPacket ErrorCode = "INVALID_PACKET"

	// Scanner construction errors. These are fatal to a job and surface
	// before any port is probed.
	CodeInterfaceNotFound ErrorCode = "INTERFACE_NOT_FOUND"
	CodeUnsupportedTarget ErrorCode = "UNSUPPORTED_TARGET"

	// Target resolution errors.
	CodeTargetInvalid    ErrorCode = "TARGET_INVALID"
	CodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"

	// Persistence errors.
	CodeStorage         ErrorCode = "STORAGE"
	CodeScanNotFound    ErrorCode = "SCAN_NOT_FOUND"
	CodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
)

// ScanError represents an error that occurred during scanning operations.
type ScanError struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ScanError) WithContext(key string, value interface{}) *ScanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new scan error with the specified code and message.
func New(code ErrorCode, message string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Newf creates a new scan error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *ScanError {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithTarget creates a scan error for a specific target.
func NewWithTarget(code ErrorCode, message, target string) *ScanError {
	e := New(code, message)
	e.Target = target
	return e
}

// Wrap wraps an existing error as a scan error.
func Wrap(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// WrapWithTarget wraps an error with target information.
func WrapWithTarget(code ErrorCode, message, target string, err error) *ScanError {
	e := Wrap(code, message, err)
	e.Target = target
	return e
}

// CodeOf extracts the error code from an error chain. Errors that are
// not ScanErrors report CodeUnknown.
func CodeOf(err error) ErrorCode {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}

// Is reports whether any error in the chain carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsPermission reports whether the error is a privilege failure.
func IsPermission(err error) bool {
	return Is(err, CodePermission)
}

// IsTimeout reports whether the error is a timeout.
func IsTimeout(err error) bool {
	return Is(err, CodeTimeout)
}

// IsFatal reports whether the error should abort a scan job before any
// port is probed. Only configuration and privilege errors raised during
// scanner construction qualify.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case CodePermission, CodeConfiguration, CodeInterfaceNotFound, CodeUnsupportedTarget:
		return true
	default:
		return false
	}
}

// Hint returns an actionable suggestion for a fatal error, or "" when
// there is nothing useful to say.
func Hint(err error) string {
	switch CodeOf(err) {
	case CodePermission:
		return "this scan type requires elevated privileges (try running with sudo)"
	case CodeInterfaceNotFound:
		return "list available interfaces and pass one with --interface"
	case CodeUnsupportedTarget:
		return "SYN scanning supports IPv4 targets only; use a connect scan for IPv6"
	default:
		return ""
	}
}
