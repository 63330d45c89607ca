package retry

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

func TestStats_FreshRecorderIsZero(t *testing.T) {
	stats := NewStats()

	if rate := stats.SuccessRate(); rate != 0 {
		t.Errorf("SuccessRate on fresh recorder = %v, want 0", rate)
	}

	snap := stats.Snapshot()
	if snap.TotalCalls != 0 || snap.SuccessfulCalls != 0 || snap.FailedCalls != 0 || snap.TotalRetries != 0 {
		t.Errorf("Fresh recorder has non-zero counters: %+v", snap)
	}
	if snap.MaxDelay != 0 || snap.AvgDelay != 0 {
		t.Errorf("Fresh recorder has non-zero delays: %+v", snap)
	}
	if len(snap.Attempts) != 0 {
		t.Errorf("Fresh recorder has %d attempts, want 0", len(snap.Attempts))
	}
}

func TestStats_RecordAttempt_Aggregates(t *testing.T) {
	stats := NewStats()

	stats.RecordAttempt(AttemptRecord{Attempt: 1, Delay: 1 * time.Second, Category: cloudmig.CategoryServiceUnavailable})
	stats.RecordAttempt(AttemptRecord{Attempt: 2, Delay: 3 * time.Second, Category: cloudmig.CategoryThrottling})

	snap := stats.Snapshot()
	if snap.TotalRetries != 2 {
		t.Errorf("TotalRetries = %d, want 2", snap.TotalRetries)
	}
	if len(snap.Attempts) != 2 {
		t.Fatalf("len(Attempts) = %d, want 2", len(snap.Attempts))
	}
	if snap.MaxDelay != 3*time.Second {
		t.Errorf("MaxDelay = %v, want 3s", snap.MaxDelay)
	}
	// Average over all recorded attempts: (1s + 3s) / 2.
	if snap.AvgDelay != 2*time.Second {
		t.Errorf("AvgDelay = %v, want 2s", snap.AvgDelay)
	}
}

func TestStats_RecordCallResult(t *testing.T) {
	stats := NewStats()

	stats.RecordCallResult(true)
	stats.RecordCallResult(true)
	stats.RecordCallResult(true)
	stats.RecordCallResult(false)

	snap := stats.Snapshot()
	if snap.TotalCalls != 4 {
		t.Errorf("TotalCalls = %d, want 4", snap.TotalCalls)
	}
	if snap.SuccessfulCalls != 3 {
		t.Errorf("SuccessfulCalls = %d, want 3", snap.SuccessfulCalls)
	}
	if snap.FailedCalls != 1 {
		t.Errorf("FailedCalls = %d, want 1", snap.FailedCalls)
	}
	if rate := stats.SuccessRate(); rate != 75 {
		t.Errorf("SuccessRate = %v, want 75", rate)
	}
}

func TestStats_Reset_MatchesFreshRecorder(t *testing.T) {
	stats := NewStats()
	stats.RecordCallResult(true)
	stats.RecordCallResult(false)
	stats.RecordAttempt(AttemptRecord{Attempt: 1, Delay: time.Second})

	stats.Reset()

	if !reflect.DeepEqual(stats.Snapshot(), NewStats().Snapshot()) {
		t.Errorf("Reset recorder differs from fresh recorder: %+v", stats.Snapshot())
	}
	if rate := stats.SuccessRate(); rate != 0 {
		t.Errorf("SuccessRate after Reset = %v, want 0", rate)
	}
}

func TestStats_SnapshotIsACopy(t *testing.T) {
	stats := NewStats()
	stats.RecordAttempt(AttemptRecord{Attempt: 1, Delay: time.Second})

	snap := stats.Snapshot()
	snap.Attempts[0].Delay = time.Hour

	if stats.Snapshot().Attempts[0].Delay != time.Second {
		t.Error("Mutating a snapshot leaked into the recorder")
	}
}

func TestStats_ConcurrentWriters(t *testing.T) {
	stats := NewStats()

	var wg sync.WaitGroup
	const workers = 8
	const perWorker = 100

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				stats.RecordCallResult(i%2 == 0)
				stats.RecordAttempt(AttemptRecord{Attempt: 1, Delay: 10 * time.Millisecond})
			}
		}()
	}
	wg.Wait()

	snap := stats.Snapshot()
	if snap.TotalCalls != workers*perWorker {
		t.Errorf("TotalCalls = %d, want %d", snap.TotalCalls, workers*perWorker)
	}
	if snap.SuccessfulCalls+snap.FailedCalls != snap.TotalCalls {
		t.Errorf("SuccessfulCalls+FailedCalls = %d, want %d",
			snap.SuccessfulCalls+snap.FailedCalls, snap.TotalCalls)
	}
	if snap.TotalRetries != workers*perWorker {
		t.Errorf("TotalRetries = %d, want %d", snap.TotalRetries, workers*perWorker)
	}
	if snap.AvgDelay != 10*time.Millisecond {
		t.Errorf("AvgDelay = %v, want 10ms", snap.AvgDelay)
	}
}
