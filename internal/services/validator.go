// Package services implements the validate and migrate workflows on top
// of the management API client, the endpoint prober, and the retry core.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avetrov-io/cloudmig/internal/cloud"
	"github.com/avetrov-io/cloudmig/internal/retry"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// EndpointProber checks connectivity to a server's database endpoint.
// *cloud.Prober implements it; tests substitute fakes.
type EndpointProber interface {
	Probe(ctx context.Context, server cloudmig.ServerRecord) error
}

// ValidationService implements the validate workflow: for every
// inventory server it asks the management API about the server and
// probes the endpoint, each call going through the retry executor.
//
// Thread-Safety: safe for concurrent Validate() calls; all mutable
// state lives in the per-call report.
type ValidationService struct {
	api      cloud.API
	prober   EndpointProber
	executor *retry.Executor
	logger   cloudmig.Logger
}

// NewValidationService creates a ValidationService with all dependencies
// injected. Panics on nil dependencies: those are programmer errors that
// should fail loudly at startup, not during a run.
func NewValidationService(api cloud.API, prober EndpointProber, executor *retry.Executor, logger cloudmig.Logger) *ValidationService {
	if api == nil {
		panic("api cannot be nil")
	}
	if prober == nil {
		panic("prober cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &ValidationService{
		api:      api,
		prober:   prober,
		executor: executor,
		logger:   logger,
	}
}

// Validate checks every server in the inventory and returns a report
// with per-server outcomes. A failing server does not stop the run;
// the report records its error and validation continues. The returned
// error is non-nil only when the run itself could not proceed.
func (s *ValidationService) Validate(ctx context.Context, servers []cloudmig.ServerRecord) (*cloudmig.ValidationReport, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("inventory is empty: %w", cloudmig.ErrValidationFailed)
	}

	report := &cloudmig.ValidationReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	s.logger.Verbose("Validation run %s: %d server(s)", report.RunID, len(servers))

	for _, server := range servers {
		result := s.validateServer(ctx, server)
		report.Servers = append(report.Servers, result)

		if result.Err != nil {
			s.logger.Error("✗ %s: %v", server.ServerID, result.Err)
		} else {
			s.logger.Info("✓ %s (%s, state: %s)", server.ServerID, server.Hostname, result.APIStatus)
		}

		if ctx.Err() != nil {
			report.Duration = time.Since(report.StartedAt)
			return report, ctx.Err()
		}
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

func (s *ValidationService) validateServer(ctx context.Context, server cloudmig.ServerRecord) cloudmig.ServerValidation {
	result := cloudmig.ServerValidation{Server: server}

	state, err := retry.Do(ctx, s.executor, func(ctx context.Context) (*cloud.ServerState, error) {
		return s.api.DescribeServer(ctx, server.ServerID)
	})
	if err != nil {
		result.Err = fmt.Errorf("describe %s: %w", server.ServerID, err)
		return result
	}
	result.APIStatus = state.Status

	if state.Status != cloud.ServerStateAvailable {
		result.Err = fmt.Errorf("server %s is %q, expected %q: %w",
			server.ServerID, state.Status, cloud.ServerStateAvailable, cloudmig.ErrValidationFailed)
		return result
	}
	if server.Engine != "" && state.Engine != "" && server.Engine != state.Engine {
		result.Err = fmt.Errorf("server %s engine mismatch: inventory says %q, API says %q: %w",
			server.ServerID, server.Engine, state.Engine, cloudmig.ErrValidationFailed)
		return result
	}

	if err := s.executor.Execute(ctx, func(ctx context.Context) error {
		return s.prober.Probe(ctx, server)
	}); err != nil {
		result.Err = fmt.Errorf("%w: %w", cloudmig.ErrConnectionFailed, err)
		return result
	}
	result.Reachable = true

	return result
}
