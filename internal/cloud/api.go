package cloud

import "context"

// Migration job states reported by the management API.
const (
	JobStatePending         = "pending"
	JobStateReplicating     = "replicating"
	JobStateReadyForCutover = "ready_for_cutover"
	JobStateCutOver         = "cut_over"
	JobStateFailed          = "failed"
)

// Server states reported by the management API.
const (
	ServerStateAvailable = "available"
	ServerStateMigrating = "migrating"
	ServerStateRetired   = "retired"
)

// ServerState describes a managed server as the management API sees it.
type ServerState struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Engine string `json:"engine"`
	Status string `json:"status"`
	Tier   string `json:"tier"`
}

// MigrationJob describes one server's migration job.
type MigrationJob struct {
	ID       string `json:"id"`
	ServerID string `json:"server_id"`
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Detail   string `json:"detail,omitempty"`
}

// StartReplicationRequest asks the management API to begin replicating a
// server onto the target tier.
type StartReplicationRequest struct {
	ServerID   string `json:"server_id"`
	TargetTier string `json:"target_tier"`
	RunID      string `json:"run_id"`
}

// API is the management API surface the validator and migrator need.
// *Client implements it against a real endpoint; tests substitute fakes.
type API interface {
	// DescribeServer fetches the current state of a managed server.
	DescribeServer(ctx context.Context, serverID string) (*ServerState, error)

	// StartReplication begins replicating a server onto its target tier
	// and returns the created migration job.
	StartReplication(ctx context.Context, req StartReplicationRequest) (*MigrationJob, error)

	// JobStatus fetches the current state of a migration job.
	JobStatus(ctx context.Context, jobID string) (*MigrationJob, error)

	// StartCutover finalizes a migration job whose replication has caught up.
	StartCutover(ctx context.Context, jobID string) (*MigrationJob, error)
}
