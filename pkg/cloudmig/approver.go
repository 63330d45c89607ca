package cloudmig

import "context"

// Approver handles user interaction for approval workflows,
// particularly for the irreversible cutover step of a migration.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the server ID for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before cutting a server over.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - serverID: Identifier of the server about to be cut over
	//
	// Returns:
	//   - bool: true if approved, false if denied
	//   - error: Any error that occurred during the approval process
	RequestApproval(ctx context.Context, serverID string) (bool, error)
}
