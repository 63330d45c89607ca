package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/avetrov-io/cloudmig/internal/logging"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// An Executor is safe for concurrent use. Each Execute call runs exactly
// one attempt at a time and suspends only itself during inter-attempt
// delays; concurrent Execute calls never block one another. The injected
// Stats recorder serializes its own mutations.
type Executor struct {
	policy     Policy
	classifier cloudmig.ErrorClassifier
	scheduler  cloudmig.BackoffScheduler
	stats      *Stats
	logger     cloudmig.Logger
	onRetry    func(attempt int, err error, delay time.Duration)
}

// ExecutorOption is a functional option for configuring an Executor.
type ExecutorOption func(*Executor)

// WithClassifier replaces the default CategoryClassifier.
func WithClassifier(c cloudmig.ErrorClassifier) ExecutorOption {
	return func(e *Executor) {
		e.classifier = c
	}
}

// WithScheduler replaces the default ExponentialBackoff scheduler.
func WithScheduler(s cloudmig.BackoffScheduler) ExecutorOption {
	return func(e *Executor) {
		e.scheduler = s
	}
}

// WithStats injects a shared statistics recorder. Without this option the
// Executor records into a private Stats instance.
func WithStats(s *Stats) ExecutorOption {
	return func(e *Executor) {
		e.stats = s
	}
}

// WithLogger sets the logger used for advisory retry notices.
func WithLogger(l cloudmig.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithOnRetry sets a callback invoked before each inter-attempt wait.
// attempt is the 1-based number of the attempt that just failed.
func WithOnRetry(callback func(attempt int, err error, delay time.Duration)) ExecutorOption {
	return func(e *Executor) {
		e.onRetry = callback
	}
}

// NewExecutor creates a retry executor for the given policy.
// It returns an error when the policy violates its invariants.
func NewExecutor(policy Policy, opts ...ExecutorOption) (*Executor, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}

	e := &Executor{
		policy: policy,
		logger: logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.classifier == nil {
		e.classifier = NewCategoryClassifier(policy)
	}
	if e.scheduler == nil {
		e.scheduler = NewExponentialBackoff(policy)
	}
	if e.stats == nil {
		e.stats = NewStats()
	}

	return e, nil
}

// Stats returns the statistics recorder this Executor reports into.
func (e *Executor) Stats() *Stats {
	return e.stats
}

// Execute runs the operation under retry supervision.
//
// The operation is invoked synchronously, up to the policy's MaxAttempts.
// A failure classified as non-retryable, or a failure on the final
// attempt, is propagated to the caller unchanged; the Executor never
// wraps or replaces the operation's error, so callers can still inspect
// its structured fields.
func (e *Executor) Execute(ctx context.Context, operation cloudmig.Operation) error {
	maxAttempts := e.policy.MaxAttempts
	retries := 0

	for attempt := 1; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			e.stats.RecordCallResult(true)
			if retries > 0 {
				e.logger.Info("operation succeeded after %d retries", retries)
			}
			return nil
		}

		if attempt >= maxAttempts {
			e.stats.RecordCallResult(false)
			if retries > 0 {
				e.logger.Error("giving up after %d attempts: %v", attempt, err)
			}
			return err
		}

		category, retryable := e.classifier.Classify(err)
		if !retryable {
			// Fatal error: propagate immediately without consuming
			// the remaining attempt budget.
			e.stats.RecordCallResult(false)
			return err
		}

		delay := e.scheduler.NextDelay(attempt-1, category, err)
		e.stats.RecordAttempt(AttemptRecord{
			Attempt:   attempt,
			Delay:     delay,
			Category:  category,
			Reason:    err.Error(),
			Timestamp: time.Now(),
		})

		e.logger.Info("retrying in %.1fs (attempt %d/%d, reason: %s)",
			delay.Seconds(), attempt+1, maxAttempts, category)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		// Wait for the backoff period, respecting context cancellation.
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.stats.RecordCallResult(false)
			return ctx.Err()
		case <-timer.C:
		}

		retries++
	}
}

// Wrap adapts an operation so that every call through the returned
// Operation is retried automatically under this Executor's policy.
func (e *Executor) Wrap(operation cloudmig.Operation) cloudmig.Operation {
	return func(ctx context.Context) error {
		return e.Execute(ctx, operation)
	}
}

// Do executes a result-producing operation under retry supervision and
// returns the value from the attempt that succeeded.
func Do[T any](ctx context.Context, e *Executor, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	return result, err
}
