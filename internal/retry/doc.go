// Package retry provides automatic retry logic with error classification,
// exponential backoff with jitter, and retry-after hint support for
// transient management API and network failures.
//
// The package supports pluggable error classification and backoff strategies,
// making it suitable for various retry scenarios beyond management API calls.
//
// # Example Usage
//
//	policy := retry.DefaultPolicy()
//	executor, err := retry.NewExecutor(policy)
//	if err != nil {
//	    return err
//	}
//
//	err = executor.Execute(ctx, func(ctx context.Context) error {
//	    return api.DescribeServer(ctx, serverID)
//	})
//
// # Error Classification
//
// The cloudmig.ErrorClassifier interface determines which errors are
// transient (retryable) versus fatal (non-retryable), and assigns each
// transient error a category used for messaging and category-specific
// delay adjustment. CategoryClassifier inspects structured fields first
// (status code, failure kind) and falls back to configurable keyword
// matching over the error text.
//
// # Backoff Strategies
//
// The cloudmig.BackoffScheduler interface controls retry timing.
// ExponentialBackoff implements exponential backoff with jitter,
// category-specific multipliers, and server-supplied retry-after hints
// that override local computation.
//
// # Statistics
//
// A Stats recorder accumulates call, retry, and delay statistics.
// It is an explicit shared object injected into Executors, serialized
// internally, and readable at any time for reporting.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Each Execute call
// suspends only itself during inter-attempt delays.
package retry
