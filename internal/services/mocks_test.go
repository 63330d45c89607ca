package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/avetrov-io/cloudmig/internal/cloud"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// fakeAPI is an in-memory management API. Servers and jobs are seeded by
// tests; job state advances one step per JobStatus poll so workflows
// complete quickly.
type fakeAPI struct {
	mu sync.Mutex

	servers map[string]*cloud.ServerState
	jobs    map[string]*cloud.MigrationJob

	describeErr    error
	replicationErr error
	cutoverErr     error
	jobStatusErr   error

	// failJobAtState makes jobs flip to failed once they reach this state.
	failJobAtState string

	describeCalls    int
	replicationCalls int
	cutoverCalls     int
	jobStatusCalls   int

	nextJobID int
}

func newFakeAPI(servers ...*cloud.ServerState) *fakeAPI {
	api := &fakeAPI{
		servers: make(map[string]*cloud.ServerState),
		jobs:    make(map[string]*cloud.MigrationJob),
	}
	for _, s := range servers {
		api.servers[s.ID] = s
	}
	return api
}

func availableServer(id string) *cloud.ServerState {
	return &cloud.ServerState{
		ID:     id,
		Name:   id,
		Engine: "postgres",
		Status: cloud.ServerStateAvailable,
		Tier:   "standard",
	}
}

func (f *fakeAPI) DescribeServer(ctx context.Context, serverID string) (*cloud.ServerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeCalls++

	if f.describeErr != nil {
		return nil, f.describeErr
	}
	state, ok := f.servers[serverID]
	if !ok {
		return nil, &cloudmig.APIError{Status: 404, Message: fmt.Sprintf("server %s not found", serverID)}
	}
	return state, nil
}

func (f *fakeAPI) StartReplication(ctx context.Context, req cloud.StartReplicationRequest) (*cloud.MigrationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replicationCalls++

	if f.replicationErr != nil {
		return nil, f.replicationErr
	}
	f.nextJobID++
	job := &cloud.MigrationJob{
		ID:       fmt.Sprintf("job-%d", f.nextJobID),
		ServerID: req.ServerID,
		State:    cloud.JobStatePending,
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeAPI) JobStatus(ctx context.Context, jobID string) (*cloud.MigrationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobStatusCalls++

	if f.jobStatusErr != nil {
		return nil, f.jobStatusErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, &cloudmig.APIError{Status: 404, Message: fmt.Sprintf("job %s not found", jobID)}
	}

	// Advance the job one step per poll.
	switch job.State {
	case cloud.JobStatePending:
		job.State = cloud.JobStateReplicating
		job.Progress = 50
	case cloud.JobStateReplicating:
		job.State = cloud.JobStateReadyForCutover
		job.Progress = 100
	}
	if f.failJobAtState != "" && job.State == f.failJobAtState {
		job.State = cloud.JobStateFailed
		job.Detail = "replication lag exceeded threshold"
	}

	snapshot := *job
	return &snapshot, nil
}

func (f *fakeAPI) StartCutover(ctx context.Context, jobID string) (*cloud.MigrationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoverCalls++

	if f.cutoverErr != nil {
		return nil, f.cutoverErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, &cloudmig.APIError{Status: 404, Message: fmt.Sprintf("job %s not found", jobID)}
	}
	job.State = cloud.JobStateCutOver
	snapshot := *job
	return &snapshot, nil
}

// fakeProber records probes and fails the server IDs listed in failFor.
type fakeProber struct {
	mu      sync.Mutex
	probed  []string
	failFor map[string]error
}

func newFakeProber() *fakeProber {
	return &fakeProber{failFor: make(map[string]error)}
}

func (p *fakeProber) Probe(ctx context.Context, server cloudmig.ServerRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = append(p.probed, server.ServerID)
	if err, ok := p.failFor[server.ServerID]; ok {
		return err
	}
	return nil
}

// fakeApprover answers cutover approval requests from a script.
type fakeApprover struct {
	mu       sync.Mutex
	approve  bool
	err      error
	requests []string
}

func (a *fakeApprover) RequestApproval(ctx context.Context, serverID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, serverID)
	return a.approve, a.err
}
