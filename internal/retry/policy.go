package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// Policy is the immutable configuration for one retry execution.
// A Policy is never mutated after construction and is safe to share
// across concurrent Executors.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry attempt.
	BaseDelay time.Duration

	// MaxDelay is the upper bound on any computed delay.
	MaxDelay time.Duration

	// Multiplier is the factor by which the delay grows per additional attempt.
	Multiplier float64

	// Jitter enables a +/-10% randomized adjustment of computed delays.
	Jitter bool

	// RetryableStatusCodes are transport status codes treated as transient.
	RetryableStatusCodes []int

	// RetryableErrorKinds are failure-kind tags treated as transient
	// regardless of message content.
	RetryableErrorKinds []string
}

// DefaultPolicy returns the standard retry policy:
// 3 attempts, 1s base delay doubling up to 60s, jitter enabled,
// and the common transient transport status codes.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:          cloudmig.DefaultRetryMaxAttempts,
		BaseDelay:            cloudmig.DefaultRetryBaseDelay,
		MaxDelay:             cloudmig.DefaultRetryMaxDelay,
		Multiplier:           cloudmig.DefaultRetryMultiplier,
		Jitter:               true,
		RetryableStatusCodes: cloudmig.DefaultRetryableStatusCodes(),
	}
}

// Validate checks the Policy invariants.
// It returns a multi-error if multiple validation failures occur.
func (p Policy) Validate() error {
	var errs []error

	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("MaxAttempts must be at least 1, got %d: %w", p.MaxAttempts, cloudmig.ErrInvalidConfig))
	}

	if p.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("BaseDelay must be positive, got %v: %w", p.BaseDelay, cloudmig.ErrInvalidConfig))
	}

	if p.MaxDelay <= 0 {
		errs = append(errs, fmt.Errorf("MaxDelay must be positive, got %v: %w", p.MaxDelay, cloudmig.ErrInvalidConfig))
	}

	if p.BaseDelay > 0 && p.MaxDelay > 0 && p.BaseDelay > p.MaxDelay {
		errs = append(errs, fmt.Errorf("BaseDelay %v exceeds MaxDelay %v: %w", p.BaseDelay, p.MaxDelay, cloudmig.ErrInvalidConfig))
	}

	if p.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("Multiplier must be at least 1, got %g: %w", p.Multiplier, cloudmig.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
