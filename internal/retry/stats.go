package retry

import (
	"sync"
	"time"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// AttemptRecord captures one scheduled retry: the attempt that failed,
// the delay computed before the next attempt, and why.
// Records are immutable once created.
type AttemptRecord struct {
	// Attempt is the 1-based number of the failed attempt that triggered the retry.
	Attempt int

	// Delay is the computed wait before the next attempt.
	Delay time.Duration

	// Category is the retry category the failure was classified into.
	Category cloudmig.RetryCategory

	// Reason is the failure message.
	Reason string

	// Timestamp is when the retry was scheduled.
	Timestamp time.Time
}

// Stats accumulates call, retry, and delay statistics across Executors.
//
// It is shared mutable state: one Stats instance is typically created per
// process and injected into every Executor. All mutating methods are
// serialized by an internal mutex; snapshots may lag in-flight writers.
type Stats struct {
	mu sync.Mutex

	totalCalls      int
	successfulCalls int
	failedCalls     int
	totalRetries    int
	attempts        []AttemptRecord
	maxDelay        time.Duration
	totalDelay      time.Duration
}

// Snapshot is a point-in-time copy of the accumulated statistics.
type Snapshot struct {
	TotalCalls      int
	SuccessfulCalls int
	FailedCalls     int
	TotalRetries    int
	Attempts        []AttemptRecord
	MaxDelay        time.Duration
	AvgDelay        time.Duration
}

// NewStats creates an empty statistics recorder.
func NewStats() *Stats {
	return &Stats{}
}

// RecordAttempt appends a scheduled retry to the attempt list and updates
// the retry count and delay aggregates. The average delay is recomputed
// over all recorded attempts, not a decaying estimate.
func (s *Stats) RecordAttempt(rec AttemptRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = append(s.attempts, rec)
	s.totalRetries++
	s.totalDelay += rec.Delay
	if rec.Delay > s.maxDelay {
		s.maxDelay = rec.Delay
	}
}

// RecordCallResult records the terminal outcome of one supervised call.
func (s *Stats) RecordCallResult(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalCalls++
	if success {
		s.successfulCalls++
	} else {
		s.failedCalls++
	}
}

// SuccessRate returns the percentage of supervised calls that succeeded.
// It returns 0 when no calls have been recorded.
func (s *Stats) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totalCalls == 0 {
		return 0
	}
	return float64(s.successfulCalls) / float64(s.totalCalls) * 100
}

// Snapshot returns a consistent copy of the accumulated statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := make([]AttemptRecord, len(s.attempts))
	copy(attempts, s.attempts)

	var avg time.Duration
	if len(s.attempts) > 0 {
		avg = s.totalDelay / time.Duration(len(s.attempts))
	}

	return Snapshot{
		TotalCalls:      s.totalCalls,
		SuccessfulCalls: s.successfulCalls,
		FailedCalls:     s.failedCalls,
		TotalRetries:    s.totalRetries,
		Attempts:        attempts,
		MaxDelay:        s.maxDelay,
		AvgDelay:        avg,
	}
}

// Reset clears all counters and records, returning the recorder to the
// state of a newly constructed Stats. Intended for test isolation and
// statistics windows in long-running processes.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalCalls = 0
	s.successfulCalls = 0
	s.failedCalls = 0
	s.totalRetries = 0
	s.attempts = nil
	s.maxDelay = 0
	s.totalDelay = 0
}
