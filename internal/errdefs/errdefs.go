// Package errdefs defines the error kinds shared across redisctl and their
// mapping to process exit codes.
//
// Handlers wrap causes with fmt.Errorf("...: %w", err) as usual; the kinds in
// this package sit at the root of those chains so the dispatcher can pick an
// exit code with errors.As and print one human line without losing the chain.
package errdefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Exit codes are a stable contract; scripts depend on them.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitUsage      = 2
	ExitConfig     = 3
	ExitAPI        = 4
	ExitTimeout    = 5
	ExitValidation = 6
)

// ConfigError indicates a missing or corrupt config file, an unknown profile,
// or a profile of the wrong deployment type for the requested platform.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// ConfigWrap wraps an existing cause as a ConfigError.
func ConfigWrap(err error, format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format+": %w", append(args, err)...)}
}

// CredentialError indicates an unresolved credential reference or an
// unavailable keyring backend.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string { return e.Err.Error() }
func (e *CredentialError) Unwrap() error { return e.Err }

// Credentialf builds a CredentialError from a format string.
func Credentialf(format string, args ...any) error {
	return &CredentialError{Err: fmt.Errorf(format, args...)}
}

// TransportError indicates a network-level failure: DNS, connection reset,
// TLS handshake, or an open circuit breaker. Distinct from TimeoutError,
// which covers wait-loop deadlines.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps a network-level cause.
func Transport(err error) error {
	return &TransportError{Err: err}
}

// Transportf builds a TransportError from a format string.
func Transportf(format string, args ...any) error {
	return &TransportError{Err: fmt.Errorf(format, args...)}
}

// APIError carries an HTTP >= 400 response. The body is preserved verbatim so
// callers can pretty-print the platform's own error payload.
type APIError struct {
	StatusCode int
	Body       string
	// TaskID is set when the error surfaced through the async orchestrator.
	TaskID string
	// Detail is the extracted human message, when one could be pulled out of
	// the body or a task record. Falls back to the raw body in Error().
	Detail string
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "API error (status %d)", e.StatusCode)
	} else {
		// Task and action failures carry no HTTP status of their own.
		b.WriteString("operation failed")
	}
	if e.TaskID != "" {
		fmt.Fprintf(&b, " [task %s]", e.TaskID)
	}
	switch {
	case e.Detail != "":
		b.WriteString(": " + e.Detail)
	case e.Body != "":
		b.WriteString(": " + strings.TrimSpace(e.Body))
	}
	return b.String()
}

// JSONBody decodes the response body when it is a JSON object.
func (e *APIError) JSONBody() (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(e.Body), &m); err != nil {
		return nil, false
	}
	return m, true
}

// API builds an APIError from a status code and raw body.
func API(statusCode int, body string) error {
	return &APIError{StatusCode: statusCode, Body: body}
}

// ValidationError indicates a client-side argument check failure, before any
// request is made.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// TimeoutError indicates a wait loop exceeded its caller-supplied deadline.
type TimeoutError struct {
	TaskID string
	Limit  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("timed out after %s", e.Limit)
	}
	return fmt.Sprintf("task %s did not reach a terminal state within %s", e.TaskID, e.Limit)
}

// Timeout builds a TimeoutError for a task id and limit.
func Timeout(taskID string, limit time.Duration) error {
	return &TimeoutError{TaskID: taskID, Limit: limit}
}

// QueryError indicates an invalid -q/--query projection expression.
type QueryError struct {
	Expr string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %v", e.Expr, e.Err)
}
func (e *QueryError) Unwrap() error { return e.Err }

// Query wraps a projection failure.
func Query(expr string, err error) error {
	return &QueryError{Expr: expr, Err: err}
}

// IOError indicates a local file read/write failure (bundle destinations,
// @file inputs). Maps to the generic exit code.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// IOWrap wraps a filesystem cause as an IOError.
func IOWrap(err error, format string, args ...any) error {
	return &IOError{Err: fmt.Errorf(format+": %w", append(args, err)...)}
}

// UsageError indicates a CLI parse failure (unknown flag, bad arg count).
// The dispatcher installs it via cobra's flag error hook.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// Usage wraps a parser error.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// IsConfig reports whether err is rooted in a ConfigError.
func IsConfig(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsCredential reports whether err is rooted in a CredentialError.
func IsCredential(err error) bool {
	var e *CredentialError
	return errors.As(err, &e)
}

// IsTransport reports whether err is rooted in a TransportError.
func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsAPI reports whether err is rooted in an APIError.
func IsAPI(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// AsAPI returns the APIError in err's chain, if any.
func AsAPI(err error) (*APIError, bool) {
	var e *APIError
	ok := errors.As(err, &e)
	return e, ok
}

// IsValidation reports whether err is rooted in a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsTimeout reports whether err is rooted in a TimeoutError.
func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// IsQuery reports whether err is rooted in a QueryError.
func IsQuery(err error) bool {
	var e *QueryError
	return errors.As(err, &e)
}

// IsUsage reports whether err is rooted in a UsageError.
func IsUsage(err error) bool {
	var e *UsageError
	return errors.As(err, &e)
}

// ExitCode maps an error chain to the process exit code contract.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsUsage(err):
		return ExitUsage
	case IsConfig(err), IsCredential(err):
		return ExitConfig
	case IsTimeout(err):
		return ExitTimeout
	case IsAPI(err):
		return ExitAPI
	case IsValidation(err), IsQuery(err):
		return ExitValidation
	default:
		return ExitError
	}
}
