package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov-io/cloudmig/internal/logging"
	"github.com/avetrov-io/cloudmig/internal/retry"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

func testExecutor(t *testing.T, maxAttempts int) *retry.Executor {
	t.Helper()
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = maxAttempts
	policy.BaseDelay = time.Millisecond
	policy.MaxDelay = 10 * time.Millisecond
	policy.Jitter = false

	exec, err := retry.NewExecutor(policy)
	require.NoError(t, err)
	return exec
}

func inventory(ids ...string) []cloudmig.ServerRecord {
	var servers []cloudmig.ServerRecord
	for i, id := range ids {
		servers = append(servers, cloudmig.ServerRecord{
			ServerID:   id,
			Hostname:   id + ".example.com",
			Port:       5432,
			Engine:     "postgres",
			TargetTier: "standard",
			Wave:       1,
			Line:       i + 2,
		})
	}
	return servers
}

func TestValidate_AllServersPass(t *testing.T) {
	api := newFakeAPI(availableServer("srv-1"), availableServer("srv-2"))
	prober := newFakeProber()
	svc := NewValidationService(api, prober, testExecutor(t, 3), logging.NewNullLogger())

	report, err := svc.Validate(context.Background(), inventory("srv-1", "srv-2"))
	require.NoError(t, err)

	assert.True(t, report.Passed())
	assert.Len(t, report.Servers, 2)
	assert.NotEmpty(t, report.RunID)
	for _, s := range report.Servers {
		assert.True(t, s.Reachable)
		assert.Equal(t, "available", s.APIStatus)
		assert.NoError(t, s.Err)
	}
	assert.Equal(t, []string{"srv-1", "srv-2"}, prober.probed)
}

func TestValidate_UnknownServerRecordedNotFatal(t *testing.T) {
	api := newFakeAPI(availableServer("srv-1"))
	prober := newFakeProber()
	svc := NewValidationService(api, prober, testExecutor(t, 3), logging.NewNullLogger())

	report, err := svc.Validate(context.Background(), inventory("srv-1", "srv-missing"))
	require.NoError(t, err)

	assert.False(t, report.Passed())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "srv-missing", failed[0].Server.ServerID)
	assert.ErrorContains(t, failed[0].Err, "not found")
	// 404 is not retryable, so only one API call is made for it.
	assert.Equal(t, 2, api.describeCalls)
}

func TestValidate_ServerNotAvailable(t *testing.T) {
	migrating := availableServer("srv-1")
	migrating.Status = "migrating"
	api := newFakeAPI(migrating)
	svc := NewValidationService(api, newFakeProber(), testExecutor(t, 3), logging.NewNullLogger())

	report, err := svc.Validate(context.Background(), inventory("srv-1"))
	require.NoError(t, err)

	require.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Failed()[0].Err, cloudmig.ErrValidationFailed)
}

func TestValidate_EngineMismatch(t *testing.T) {
	mysql := availableServer("srv-1")
	mysql.Engine = "mysql"
	api := newFakeAPI(mysql)
	svc := NewValidationService(api, newFakeProber(), testExecutor(t, 3), logging.NewNullLogger())

	report, err := svc.Validate(context.Background(), inventory("srv-1"))
	require.NoError(t, err)

	require.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Failed()[0].Err, cloudmig.ErrValidationFailed)
	assert.ErrorContains(t, report.Failed()[0].Err, "engine mismatch")
}

func TestValidate_ProbeFailureRetriedAndRecorded(t *testing.T) {
	api := newFakeAPI(availableServer("srv-1"))
	prober := newFakeProber()
	prober.failFor["srv-1"] = &cloudmig.APIError{Status: 503, Message: "endpoint unavailable"}
	svc := NewValidationService(api, prober, testExecutor(t, 3), logging.NewNullLogger())

	report, err := svc.Validate(context.Background(), inventory("srv-1"))
	require.NoError(t, err)

	require.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Failed()[0].Err, cloudmig.ErrConnectionFailed)
	assert.False(t, report.Failed()[0].Reachable)
	// Retryable failure consumes the whole attempt budget.
	assert.Len(t, prober.probed, 3)
}

func TestValidate_TransientDescribeRecovers(t *testing.T) {
	api := newFakeAPI(availableServer("srv-1"))
	transient := &cloudmig.APIError{Status: 503, Message: "please retry"}
	api.describeErr = transient

	exec := testExecutor(t, 3)
	svc := NewValidationService(api, newFakeProber(), exec, logging.NewNullLogger())

	// Clear the induced failure after the first attempt.
	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(500 * time.Microsecond)
		api.mu.Lock()
		api.describeErr = nil
		api.mu.Unlock()
	}()

	report, err := svc.Validate(context.Background(), inventory("srv-1"))
	<-done
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestValidate_EmptyInventory(t *testing.T) {
	svc := NewValidationService(newFakeAPI(), newFakeProber(), testExecutor(t, 3), logging.NewNullLogger())

	_, err := svc.Validate(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cloudmig.ErrValidationFailed)
}

func TestValidate_ContextCancellationStopsRun(t *testing.T) {
	api := newFakeAPI(availableServer("srv-1"), availableServer("srv-2"))
	svc := NewValidationService(api, newFakeProber(), testExecutor(t, 3), logging.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Validate(ctx, inventory("srv-1", "srv-2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, len(report.Servers), 2)
}

func TestNewValidationService_NilDependencyPanics(t *testing.T) {
	exec := testExecutor(t, 3)
	assert.Panics(t, func() {
		NewValidationService(nil, newFakeProber(), exec, logging.NewNullLogger())
	})
	assert.Panics(t, func() {
		NewValidationService(newFakeAPI(), nil, exec, logging.NewNullLogger())
	})
	assert.Panics(t, func() {
		NewValidationService(newFakeAPI(), newFakeProber(), nil, logging.NewNullLogger())
	})
	assert.Panics(t, func() {
		NewValidationService(newFakeAPI(), newFakeProber(), exec, nil)
	})
}
