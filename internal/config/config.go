package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avetrov-io/cloudmig/internal/retry"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// APIConfig describes how to reach and authenticate with the cloud
// management API.
type APIConfig struct {
	BaseURL       string `yaml:"base_url"`
	AuthMethod    string `yaml:"auth_method,omitempty"` // static | aws_iam | azure_entra
	Token         string `yaml:"token,omitempty"`
	AzureTenantID string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID string `yaml:"azure_client_id,omitempty"`
}

// RetryConfig holds project-level overrides of the default retry policy.
// Zero values mean "use the default"; Jitter is a pointer so that an
// explicit false survives the merge.
type RetryConfig struct {
	MaxAttempts          int      `yaml:"max_attempts,omitempty"`
	BaseDelay            string   `yaml:"base_delay,omitempty"`
	MaxDelay             string   `yaml:"max_delay,omitempty"`
	Multiplier           float64  `yaml:"multiplier,omitempty"`
	Jitter               *bool    `yaml:"jitter,omitempty"`
	RetryableStatusCodes []int    `yaml:"retryable_status_codes,omitempty"`
	RetryableErrorKinds  []string `yaml:"retryable_error_kinds,omitempty"`
}

// ProjectConfig is the contents of cloudmig.yaml at a project root.
type ProjectConfig struct {
	Provider       string            `yaml:"provider"`
	Region         string            `yaml:"region,omitempty"`
	API            APIConfig         `yaml:"api"`
	Inventory      string            `yaml:"inventory,omitempty"`
	GoogleInstance string            `yaml:"google_instance,omitempty"`
	Retry          RetryConfig       `yaml:"retry,omitempty"`
	Params         map[string]string `yaml:"params,omitempty"`
	Timeout        string            `yaml:"timeout,omitempty"`
}

const ConfigFileName = "cloudmig.yaml"

// Load reads cloudmig.yaml from the project directory.
func Load(projectPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(projectPath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InventoryFile returns the configured inventory file name, falling back
// to the standard servers.csv.
func (c *ProjectConfig) InventoryFile() string {
	if c.Inventory != "" {
		return c.Inventory
	}
	return cloudmig.InventoryFileName
}

// RetryPolicy merges the project's retry overrides over the default policy.
// Delay fields use Go duration syntax ("500ms", "2s", "1m").
func (c *ProjectConfig) RetryPolicy() (retry.Policy, error) {
	policy := retry.DefaultPolicy()

	r := c.Retry
	if r.MaxAttempts != 0 {
		policy.MaxAttempts = r.MaxAttempts
	}
	if r.BaseDelay != "" {
		d, err := time.ParseDuration(r.BaseDelay)
		if err != nil {
			return retry.Policy{}, fmt.Errorf("retry.base_delay %q: %w: %w", r.BaseDelay, err, cloudmig.ErrInvalidConfig)
		}
		policy.BaseDelay = d
	}
	if r.MaxDelay != "" {
		d, err := time.ParseDuration(r.MaxDelay)
		if err != nil {
			return retry.Policy{}, fmt.Errorf("retry.max_delay %q: %w: %w", r.MaxDelay, err, cloudmig.ErrInvalidConfig)
		}
		policy.MaxDelay = d
	}
	if r.Multiplier != 0 {
		policy.Multiplier = r.Multiplier
	}
	if r.Jitter != nil {
		policy.Jitter = *r.Jitter
	}
	if len(r.RetryableStatusCodes) > 0 {
		policy.RetryableStatusCodes = append(policy.RetryableStatusCodes, r.RetryableStatusCodes...)
	}
	if len(r.RetryableErrorKinds) > 0 {
		policy.RetryableErrorKinds = r.RetryableErrorKinds
	}

	if err := policy.Validate(); err != nil {
		return retry.Policy{}, err
	}
	return policy, nil
}

// AuthMethod converts the config-file auth method name to a cloudmig.AuthMethod.
// An empty name defaults to static token auth.
func (c *ProjectConfig) AuthMethod() (cloudmig.AuthMethod, error) {
	switch c.API.AuthMethod {
	case "", "static":
		return cloudmig.AuthMethodStatic, nil
	case "aws_iam":
		return cloudmig.AuthMethodAWSIAM, nil
	case "azure_entra":
		return cloudmig.AuthMethodAzureEntraID, nil
	default:
		return 0, fmt.Errorf("unknown auth_method %q: %w", c.API.AuthMethod, cloudmig.ErrUnsupportedAuthMethod)
	}
}
