package cloudmig

import (
	"errors"
	"fmt"
	"time"
)

// Provider identifies the cloud platform hosting the management API.
type Provider int

const (
	ProviderAWS Provider = iota
	ProviderAzure
	ProviderGoogle
)

// String returns a human-readable string representation of the Provider.
func (p Provider) String() string {
	switch p {
	case ProviderAWS:
		return "AWS"
	case ProviderAzure:
		return "Azure"
	case ProviderGoogle:
		return "Google Cloud"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParseProvider converts a config-file provider name to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "aws":
		return ProviderAWS, nil
	case "azure":
		return ProviderAzure, nil
	case "google", "gcp":
		return ProviderGoogle, nil
	default:
		return 0, fmt.Errorf("unknown provider %q (expected aws, azure, or google): %w", s, ErrInvalidConfig)
	}
}

// AuthMethod represents the authentication mechanism for the management API.
type AuthMethod int

const (
	AuthMethodStatic       AuthMethod = iota // Pre-issued API token
	AuthMethodAWSIAM                         // AWS IAM request signing token
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStatic:
		return "Static token"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStatic && a <= AuthMethodAzureEntraID
}

// ServerRecord is one row of the server inventory spreadsheet: a single
// database server scheduled for migration.
type ServerRecord struct {
	// ServerID is the management API identifier of the source server.
	ServerID string

	// Hostname is the reachable endpoint of the source server.
	Hostname string

	// Port is the endpoint port (e.g. 5432).
	Port int

	// Engine is the database engine name (e.g. "postgres").
	Engine string

	// TargetTier is the compute tier the server migrates onto.
	TargetTier string

	// Wave groups servers into migration waves executed in ascending order.
	Wave int

	// Line is the 1-based line number in the inventory file, for error reporting.
	Line int
}

// MigrationConfig contains all parameters needed for a validate or migrate run.
type MigrationConfig struct {
	// ProjectPath is the directory containing cloudmig.yaml and the inventory file.
	ProjectPath string

	// Provider is the cloud platform of the management API.
	Provider Provider

	// Region is the cloud region (required for AWS IAM auth).
	Region string

	// APIBaseURL is the base URL of the management API.
	APIBaseURL string

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// APIToken is the pre-issued token used with AuthMethodStatic.
	APIToken string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance) used to dial Google-hosted endpoints.
	GoogleInstance string

	// Wave restricts the run to a single migration wave (0 = all waves).
	Wave int

	// DryRun plans the migration without invoking mutating API operations.
	DryRun bool

	// Force bypasses interactive cutover approval.
	Force bool

	// Parameters are key-value pairs substituted into the inventory file.
	Parameters map[string]string

	// Timeout is the global timeout for the entire run.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the MigrationConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *MigrationConfig) Validate() error {
	var errs []error

	if c.ProjectPath == "" {
		errs = append(errs, fmt.Errorf("ProjectPath is required: %w", ErrInvalidConfig))
	}

	if c.APIBaseURL == "" {
		errs = append(errs, fmt.Errorf("APIBaseURL is required: %w", ErrInvalidConfig))
	}

	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("AuthMethod %d is not valid: %w", c.AuthMethod, ErrInvalidConfig))
	}

	if c.AuthMethod == AuthMethodAWSIAM && c.Region == "" {
		errs = append(errs, fmt.Errorf("Region is required for AWS IAM auth: %w", ErrInvalidConfig))
	}

	if c.Wave < 0 {
		errs = append(errs, fmt.Errorf("wave cannot be negative: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ServerValidation is the validation outcome for one inventory server.
type ServerValidation struct {
	Server    ServerRecord
	Reachable bool
	APIStatus string // Server state reported by the management API
	Err       error  // Non-nil when validation failed for this server
}

// ValidationReport is the outcome of a validate run.
type ValidationReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Servers   []ServerValidation
}

// Passed returns true when every server validated successfully.
func (r *ValidationReport) Passed() bool {
	for _, s := range r.Servers {
		if s.Err != nil {
			return false
		}
	}
	return len(r.Servers) > 0
}

// Failed returns the validations that ended in an error.
func (r *ValidationReport) Failed() []ServerValidation {
	var failed []ServerValidation
	for _, s := range r.Servers {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// ServerMigration is the migration outcome for one inventory server.
type ServerMigration struct {
	Server  ServerRecord
	JobID   string // Management API job identifier, empty on dry runs
	CutOver bool
	Err     error
}

// MigrationResult is the outcome of a migrate run.
type MigrationResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	DryRun    bool
	Servers   []ServerMigration
}

// Succeeded returns true when every server migrated without error.
func (r *MigrationResult) Succeeded() bool {
	for _, s := range r.Servers {
		if s.Err != nil {
			return false
		}
	}
	return len(r.Servers) > 0
}
