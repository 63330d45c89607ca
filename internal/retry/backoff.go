package retry

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// Category-specific delay multipliers. Throttled callers back off harder
// than the plain exponential schedule; network errors slightly harder.
const (
	throttlingDelayFactor = 2.0
	networkDelayFactor    = 1.5
)

// ExponentialBackoff implements cloudmig.BackoffScheduler with
// exponential growth, jitter, category multipliers, and support for
// server-supplied retry-after hints.
type ExponentialBackoff struct {
	// baseDelay is the delay for the first retry attempt
	baseDelay time.Duration

	// maxDelay is the maximum delay between attempts
	maxDelay time.Duration

	// multiplier is the factor by which delay increases (typically 2.0)
	multiplier float64

	// jitter enables +/-10% randomness to prevent thundering herd
	jitter bool

	// jitterFunc provides random values [0, 1) for jitter calculation
	// (defaults to rand.Float64)
	jitterFunc func() float64
}

// jitterFraction is the magnitude of the randomized delay adjustment.
const jitterFraction = 0.1

// BackoffOption is a functional option for configuring ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithJitterFunc sets a custom function for generating random jitter values.
// Tests use this to make delays deterministic.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.jitterFunc = f
	}
}

// NewExponentialBackoff creates a backoff scheduler from the policy's
// delay parameters.
//
// Example:
//
//	backoff := retry.NewExponentialBackoff(policy,
//	    retry.WithJitterFunc(func() float64 { return 0.5 }),
//	)
func NewExponentialBackoff(policy Policy, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		baseDelay:  policy.BaseDelay,
		maxDelay:   policy.MaxDelay,
		multiplier: policy.Multiplier,
		jitter:     policy.Jitter,
		jitterFunc: nil, // Will use default in NextDelay
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NextDelay calculates the delay before the next attempt.
// attempt is zero-indexed: the first retry uses exponent 0.
//
// A well-formed retry-after hint carried by err overrides all local
// computation and is only clamped to the policy's maximum. Otherwise the
// delay is baseDelay * multiplier^attempt, jittered by +/-10% when
// enabled, scaled by the category factor, and clamped to
// [cloudmig.MinRetryDelay, maxDelay].
func (b *ExponentialBackoff) NextDelay(attempt int, category cloudmig.RetryCategory, err error) time.Duration {
	if hint, ok := retryAfterHint(err); ok {
		if hint > b.maxDelay {
			return b.maxDelay
		}
		return hint
	}

	delay := float64(b.baseDelay) * math.Pow(b.multiplier, float64(attempt))

	if b.jitter {
		jitterFunc := b.jitterFunc
		if jitterFunc == nil {
			// Default: real randomness for production use.
			// Tests should explicitly set jitterFunc to a deterministic function.
			jitterFunc = rand.Float64
		}

		// Map [0,1) to [-1,1) and scale to +/-10% of the delay.
		randomOffset := (jitterFunc() - 0.5) * 2.0
		delay *= 1.0 + jitterFraction*randomOffset
	}

	switch category {
	case cloudmig.CategoryThrottling:
		delay *= throttlingDelayFactor
	case cloudmig.CategoryNetworkError:
		delay *= networkDelayFactor
	}

	if delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}
	if delay < float64(cloudmig.MinRetryDelay) {
		delay = float64(cloudmig.MinRetryDelay)
	}

	return time.Duration(delay)
}

// retryAfterHint extracts a server-supplied wait hint from the error chain.
// The hint is a number of seconds; malformed or negative hints are ignored
// and the caller falls back to the exponential computation.
func retryAfterHint(err error) (time.Duration, bool) {
	var hinter cloudmig.RetryAfterHinter
	if !errors.As(err, &hinter) {
		return 0, false
	}

	raw := strings.TrimSpace(hinter.RetryAfterHint())
	if raw == "" {
		return 0, false
	}

	seconds, parseErr := strconv.ParseFloat(raw, 64)
	if parseErr != nil || seconds < 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0, false
	}

	return time.Duration(seconds * float64(time.Second)), true
}

// MaxDelay returns the maximum delay for tests and debugging.
func (b *ExponentialBackoff) MaxDelay() time.Duration {
	return b.maxDelay
}

// BaseDelay returns the base delay for tests and debugging.
func (b *ExponentialBackoff) BaseDelay() time.Duration {
	return b.baseDelay
}
