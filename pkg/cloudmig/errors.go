package cloudmig

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := migrator.Run(ctx, config)
//	if errors.Is(err, cloudmig.ErrApprovalDenied) {
//	    // Handle user denying cutover approval
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInventoryNotFound indicates the server inventory file was not found.
	ErrInventoryNotFound = errors.New("server inventory not found")

	// ErrApprovalDenied indicates the user denied approval for the cutover.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrValidationFailed indicates one or more servers failed pre-migration validation.
	ErrValidationFailed = errors.New("validation failed")

	// ErrMigrationFailed indicates migration orchestration failed.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrNotImplemented indicates a feature is not yet implemented.
	ErrNotImplemented = errors.New("not implemented")

	// ErrConnectionFailed indicates the management API or a server endpoint was unreachable.
	ErrConnectionFailed = errors.New("connection failed")
)

// APIError is a structured failure returned by the cloud management API.
// It preserves the transport status, the provider's nested error code, and
// any server-supplied retry-after hint so that retry classification and
// the troubleshooting catalog can inspect them after propagation.
type APIError struct {
	// Status is the transport/protocol status code (e.g. 429, 503).
	Status int

	// Code is the provider's nested error code (e.g. "ThrottlingException").
	Code string

	// Kind tags the failure class independent of message wording
	// (e.g. "throttling", "replication_lag").
	Kind string

	// Message is the human-readable description from the API.
	Message string

	// RetryAfter is the raw server-supplied wait hint, in seconds,
	// as received on the wire. Empty when absent.
	RetryAfter string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("management API error")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d", e.Status)
		if e.Code != "" {
			fmt.Fprintf(&b, ", code %s", e.Code)
		}
		b.WriteString(")")
	} else if e.Code != "" {
		fmt.Fprintf(&b, " (code %s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// StatusCode returns the transport status code, or 0 when absent.
func (e *APIError) StatusCode() int { return e.Status }

// ErrorCode returns the provider's nested error code, or "" when absent.
func (e *APIError) ErrorCode() string { return e.Code }

// ErrorKind returns the failure-kind tag, or "" when absent.
func (e *APIError) ErrorKind() string { return e.Kind }

// RetryAfterHint returns the raw server-supplied wait hint, or "" when absent.
func (e *APIError) RetryAfterHint() string { return e.RetryAfter }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInventoryNotFound):
		return ExitPlanMissing
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrValidationFailed):
		return ExitValidationFailed
	case errors.Is(err, ErrMigrationFailed):
		return ExitMigrationFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	}

	errStr := err.Error()

	// Cobra flag and argument parsing errors
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "missing required argument") ||
		(strings.Contains(errStr, "accepts") && strings.Contains(errStr, "arg")) {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
