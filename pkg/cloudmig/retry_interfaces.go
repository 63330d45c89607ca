package cloudmig

import (
	"context"
	"time"
)

// RetryCategory classifies a transient failure for messaging and
// category-specific backoff adjustment.
type RetryCategory int

const (
	// CategoryThrottling indicates the remote system is rate-limiting the caller.
	CategoryThrottling RetryCategory = iota

	// CategoryNetworkError indicates a connectivity-level failure.
	CategoryNetworkError

	// CategoryServiceUnavailable indicates the remote service is momentarily down.
	CategoryServiceUnavailable

	// CategoryTimeout indicates the operation did not complete in time.
	CategoryTimeout

	// CategoryTransientOther indicates a retryable failure with no more
	// specific category.
	CategoryTransientOther
)

// String returns the human-readable category name used in retry notices.
func (c RetryCategory) String() string {
	switch c {
	case CategoryThrottling:
		return "throttling"
	case CategoryNetworkError:
		return "network error"
	case CategoryServiceUnavailable:
		return "service unavailable"
	case CategoryTimeout:
		return "timeout"
	case CategoryTransientOther:
		return "transient error"
	default:
		return "unknown"
	}
}

// Operation is a unit of remote work executed under retry supervision.
type Operation func(ctx context.Context) error

// ErrorClassifier determines whether an error is transient (retryable) and,
// if so, which category it belongs to.
type ErrorClassifier interface {
	// Classify returns the retry category for err and true when err is
	// transient, or false when the operation must not be retried.
	Classify(err error) (RetryCategory, bool)
}

// BackoffScheduler calculates the delay before the next retry attempt.
type BackoffScheduler interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.).
	// err is the failure that triggered the retry; schedulers may honor
	// a server-supplied wait hint carried by it.
	NextDelay(attempt int, category RetryCategory, err error) time.Duration
}

// StatusCoder is implemented by failures that carry a transport status code.
// Classifiers discover it through the wrapped error chain via errors.As.
type StatusCoder interface {
	StatusCode() int
}

// ErrorCoder is implemented by failures that carry a provider's nested
// error code (e.g. "ServiceUnavailable", "TooManyRequests").
type ErrorCoder interface {
	ErrorCode() string
}

// ErrorKinder is implemented by failures tagged with a failure-kind label
// independent of message wording.
type ErrorKinder interface {
	ErrorKind() string
}

// RetryAfterHinter is implemented by failures carrying a server-supplied
// wait hint. The hint is the raw wire value; malformed hints are ignored
// by schedulers.
type RetryAfterHinter interface {
	RetryAfterHint() string
}
