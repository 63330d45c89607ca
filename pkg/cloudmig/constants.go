package cloudmig

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Validation/migration completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration or parameters
	ExitConnectionError  = 11 // Failed to reach the management API or a server endpoint
	ExitApprovalDenied   = 12 // User denied cutover approval
	ExitValidationFailed = 13 // One or more servers failed validation
	ExitMigrationFailed  = 14 // Migration orchestration failed
	ExitPlanMissing      = 15 // Server inventory file not found
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryMaxAttempts is the default total number of attempts, including the first.
	DefaultRetryMaxAttempts = 3

	// DefaultRetryBaseDelay is the default delay before the first retry attempt.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 60 * time.Second

	// DefaultRetryMultiplier is the default factor by which the retry delay grows.
	DefaultRetryMultiplier = 2.0

	// MinRetryDelay is the floor applied to every computed backoff delay.
	MinRetryDelay = 100 * time.Millisecond

	// DefaultStatusPollInterval is how often the migrator polls replication status
	// between orchestration steps.
	DefaultStatusPollInterval = 5 * time.Second

	// InventoryFileName is the default name of the server inventory spreadsheet.
	InventoryFileName = "servers.csv"

	// MaxErrorPreviewLength is the maximum number of characters shown when
	// previewing a remote API error body in console output.
	MaxErrorPreviewLength = 200
)

// DefaultRetryableStatusCodes are the transport status codes treated as
// transient when no project-level override is configured.
func DefaultRetryableStatusCodes() []int {
	return []int{408, 429, 500, 502, 503, 504}
}
