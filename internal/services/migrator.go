package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avetrov-io/cloudmig/internal/cloud"
	"github.com/avetrov-io/cloudmig/internal/retry"
	"github.com/avetrov-io/cloudmig/internal/sheet"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// MigrateRequest narrows a migrate run.
type MigrateRequest struct {
	// Wave restricts the run to one wave (0 = all waves, ascending).
	Wave int

	// DryRun plans the run without invoking mutating API operations.
	DryRun bool
}

// MigrationService implements the migrate workflow: wave-ordered
// replication, status polling, cutover approval, and cutover. Every
// management API call goes through the retry executor.
//
// Thread-Safety: NOT safe for concurrent Migrate() calls on the same
// instance. Create separate instances for concurrent runs.
type MigrationService struct {
	api          cloud.API
	approver     cloudmig.Approver
	executor     *retry.Executor
	logger       cloudmig.Logger
	pollInterval time.Duration
}

// MigrationOption configures a MigrationService.
type MigrationOption func(*MigrationService)

// WithPollInterval overrides how often job status is polled.
func WithPollInterval(d time.Duration) MigrationOption {
	return func(s *MigrationService) {
		s.pollInterval = d
	}
}

// NewMigrationService creates a MigrationService with all dependencies
// injected. Panics on nil dependencies (programmer errors, caught at
// startup).
func NewMigrationService(api cloud.API, approver cloudmig.Approver, executor *retry.Executor, logger cloudmig.Logger, opts ...MigrationOption) *MigrationService {
	if api == nil {
		panic("api cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	s := &MigrationService{
		api:          api,
		approver:     approver,
		executor:     executor,
		logger:       logger,
		pollInterval: cloudmig.DefaultStatusPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate runs the migration workflow over the inventory, one wave at a
// time in ascending order. A failed server fails its wave; subsequent
// waves are not started. Cutover approval denial aborts the run with
// cloudmig.ErrApprovalDenied.
func (s *MigrationService) Migrate(ctx context.Context, servers []cloudmig.ServerRecord, req MigrateRequest) (*cloudmig.MigrationResult, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("inventory is empty: %w", cloudmig.ErrMigrationFailed)
	}

	waves := sheet.Waves(servers)
	if req.Wave > 0 {
		waves = []int{req.Wave}
	}

	result := &cloudmig.MigrationResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    req.DryRun,
	}
	s.logger.Verbose("Migration run %s: %d server(s), wave(s) %v", result.RunID, len(servers), waves)

	for _, wave := range waves {
		waveServers := sheet.ByWave(servers, wave)
		if len(waveServers) == 0 {
			return nil, fmt.Errorf("wave %d has no servers: %w", wave, cloudmig.ErrMigrationFailed)
		}
		s.logger.Info("Wave %d: migrating %d server(s)", wave, len(waveServers))

		waveFailed := false
		for _, server := range waveServers {
			outcome := s.migrateServer(ctx, server, result.RunID, req.DryRun)
			result.Servers = append(result.Servers, outcome)

			if outcome.Err != nil {
				waveFailed = true
				s.logger.Error("✗ %s: %v", server.ServerID, outcome.Err)
				if errorIsFatalForRun(outcome.Err) {
					result.Duration = time.Since(result.StartedAt)
					return result, outcome.Err
				}
			}
		}

		if waveFailed {
			result.Duration = time.Since(result.StartedAt)
			return result, fmt.Errorf("wave %d failed, remaining waves not started: %w",
				wave, cloudmig.ErrMigrationFailed)
		}
		s.logger.Info("✓ Wave %d complete", wave)
	}

	result.Duration = time.Since(result.StartedAt)
	return result, nil
}

// errorIsFatalForRun reports whether a per-server failure should abort
// the whole run rather than just its wave.
func errorIsFatalForRun(err error) bool {
	return errors.Is(err, cloudmig.ErrApprovalDenied) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *MigrationService) migrateServer(ctx context.Context, server cloudmig.ServerRecord, runID string, dryRun bool) cloudmig.ServerMigration {
	outcome := cloudmig.ServerMigration{Server: server}

	state, err := retry.Do(ctx, s.executor, func(ctx context.Context) (*cloud.ServerState, error) {
		return s.api.DescribeServer(ctx, server.ServerID)
	})
	if err != nil {
		outcome.Err = fmt.Errorf("describe %s: %w", server.ServerID, err)
		return outcome
	}
	if state.Status != cloud.ServerStateAvailable {
		outcome.Err = fmt.Errorf("server %s is %q, cannot migrate: %w",
			server.ServerID, state.Status, cloudmig.ErrMigrationFailed)
		return outcome
	}

	if dryRun {
		s.logger.Info("[dry-run] would replicate %s onto tier %s", server.ServerID, server.TargetTier)
		return outcome
	}

	job, err := retry.Do(ctx, s.executor, func(ctx context.Context) (*cloud.MigrationJob, error) {
		return s.api.StartReplication(ctx, cloud.StartReplicationRequest{
			ServerID:   server.ServerID,
			TargetTier: server.TargetTier,
			RunID:      runID,
		})
	})
	if err != nil {
		outcome.Err = fmt.Errorf("start replication for %s: %w", server.ServerID, err)
		return outcome
	}
	outcome.JobID = job.ID
	s.logger.Verbose("Replication job %s started for %s", job.ID, server.ServerID)

	if err := s.awaitJobState(ctx, job.ID, cloud.JobStateReadyForCutover); err != nil {
		outcome.Err = fmt.Errorf("replication for %s: %w", server.ServerID, err)
		return outcome
	}

	approved, err := s.approver.RequestApproval(ctx, server.ServerID)
	if err != nil {
		outcome.Err = fmt.Errorf("cutover approval for %s: %w", server.ServerID, err)
		return outcome
	}
	if !approved {
		outcome.Err = cloudmig.ErrApprovalDenied
		return outcome
	}

	if _, err := retry.Do(ctx, s.executor, func(ctx context.Context) (*cloud.MigrationJob, error) {
		return s.api.StartCutover(ctx, job.ID)
	}); err != nil {
		outcome.Err = fmt.Errorf("start cutover for %s: %w", server.ServerID, err)
		return outcome
	}

	if err := s.awaitJobState(ctx, job.ID, cloud.JobStateCutOver); err != nil {
		outcome.Err = fmt.Errorf("cutover for %s: %w", server.ServerID, err)
		return outcome
	}
	outcome.CutOver = true
	s.logger.Info("✓ %s cut over (job %s)", server.ServerID, job.ID)

	return outcome
}

// awaitJobState polls the job until it reaches the wanted state. A job
// that reports the failed state stops the poll loop immediately.
func (s *MigrationService) awaitJobState(ctx context.Context, jobID, want string) error {
	for {
		job, err := retry.Do(ctx, s.executor, func(ctx context.Context) (*cloud.MigrationJob, error) {
			return s.api.JobStatus(ctx, jobID)
		})
		if err != nil {
			return fmt.Errorf("poll job %s: %w", jobID, err)
		}

		switch job.State {
		case want:
			return nil
		case cloud.JobStateFailed:
			return fmt.Errorf("job %s failed: %s: %w", jobID, job.Detail, cloudmig.ErrMigrationFailed)
		}

		s.logger.Verbose("Job %s: %s (%d%%), waiting for %s", jobID, job.State, job.Progress, want)

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
