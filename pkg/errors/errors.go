// Package errors defines the runner's error taxonomy.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown          = "UNKNOWN_ERROR"
	CodeSpecDecodeError  = "SPEC_DECODE_ERROR"
	CodeLaunchError      = "LAUNCH_ERROR"
	CodeBenchLaunchError = "BENCH_LAUNCH_ERROR"
	CodeParseError       = "PARSE_ERROR"
	CodeSandboxError     = "SANDBOX_ERROR"
	CodeRegressionError  = "REGRESSION_ERROR"
	CodeIOError          = "IO_ERROR"
	CodeConfigError      = "CONFIG_ERROR"
)

// AppError represents a runner error with a taxonomy code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances, one per taxonomy entry.
var (
	ErrSpecDecodeError  = New(CodeSpecDecodeError, "failed to decode benchmark spec payload")
	ErrLaunchError      = New(CodeLaunchError, "failed to launch valgrind or the benchmark binary")
	ErrBenchLaunchError = New(CodeBenchLaunchError, "benchmark child exited inconsistent with configured exit status")
	ErrParseError       = New(CodeParseError, "failed to parse tool artifact")
	ErrSandboxError     = New(CodeSandboxError, "sandbox setup or teardown failed")
	ErrRegressionError  = New(CodeRegressionError, "a configured regression limit was breached")
	ErrIOError          = New(CodeIOError, "artifact read or write failed")
	ErrConfigError      = New(CodeConfigError, "invalid configuration")
)

// IsSpecDecodeError checks if err is a spec-decode error.
func IsSpecDecodeError(err error) bool { return errors.Is(err, ErrSpecDecodeError) }

// IsLaunchError checks if err is a process-launch error.
func IsLaunchError(err error) bool { return errors.Is(err, ErrLaunchError) }

// IsBenchLaunchError checks if err is a benchmark-exit-status error.
func IsBenchLaunchError(err error) bool { return errors.Is(err, ErrBenchLaunchError) }

// IsParseError checks if err is an artifact-parse error.
func IsParseError(err error) bool { return errors.Is(err, ErrParseError) }

// IsSandboxError checks if err is a sandbox lifecycle error.
func IsSandboxError(err error) bool { return errors.Is(err, ErrSandboxError) }

// IsRegressionError checks if err is a regression-limit breach.
func IsRegressionError(err error) bool { return errors.Is(err, ErrRegressionError) }

// IsIOError checks if err is a generic artifact I/O error.
func IsIOError(err error) bool { return errors.Is(err, ErrIOError) }

// IsConfigError checks if err is a configuration error.
func IsConfigError(err error) bool { return errors.Is(err, ErrConfigError) }

// GetErrorCode extracts the taxonomy code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// RegressionError wraps a regression breach with whether the offending
// tool has fail_fast set, since the driver's propagation decision depends
// on that flag rather than the error code alone.
type RegressionError struct {
	*AppError
	FailFast bool
}

// NewRegressionError builds a RegressionError.
func NewRegressionError(message string, failFast bool) *RegressionError {
	return &RegressionError{
		AppError: New(CodeRegressionError, message),
		FailFast: failFast,
	}
}
