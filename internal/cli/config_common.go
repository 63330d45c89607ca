package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avetrov-io/cloudmig/internal/cloud"
	"github.com/avetrov-io/cloudmig/internal/config"
	"github.com/avetrov-io/cloudmig/internal/logging"
	"github.com/avetrov-io/cloudmig/internal/params"
	"github.com/avetrov-io/cloudmig/internal/retry"
	"github.com/avetrov-io/cloudmig/internal/sheet"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// defaultRunTimeout bounds a whole validate or migrate run. Catastrophic
// failure protection, not normal timeout control.
const defaultRunTimeout = 30 * time.Minute

// runFlagValues are the flags shared by validate and migrate.
type runFlagValues struct {
	envFile     string
	params      []string
	paramsFiles []string
	timeout     time.Duration
}

func registerRunFlags(cmd *cobra.Command, flags *runFlagValues) {
	cmd.Flags().StringVar(&flags.envFile, "env-file", "",
		"Load environment variables from a .env file before reading configuration\n"+
			"Example: --env-file prod.env")
	cmd.Flags().StringSliceVar(&flags.params, "param", nil,
		"Parameters as key=value pairs, substituted into ${placeholders} in the inventory\n"+
			"(can be specified multiple times)\n"+
			"Example: --param tier=db.r6g.large --param region=us-west-2")
	cmd.Flags().StringSliceVar(&flags.paramsFiles, "params-file", nil,
		"Load parameters from .env files (can be specified multiple times)\n"+
			"Later files override earlier ones, CLI --param overrides all")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", defaultRunTimeout,
		"Catastrophic failure protection timeout for the whole run\n"+
			"Examples: 30s, 5m, 1h30m")
}

// buildMigrationConfig resolves flags, environment, and cloudmig.yaml
// into a MigrationConfig. Extracted for testability.
func buildMigrationConfig(cmd *cobra.Command, flags *runFlagValues, projectPath string, verbose bool) (cloudmig.MigrationConfig, *config.ProjectConfig, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			return cloudmig.MigrationConfig{}, nil, fmt.Errorf("failed to load env file %q: %w", flags.envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	projectCfg, err := config.Load(projectPath)
	if err != nil {
		return cloudmig.MigrationConfig{}, nil, fmt.Errorf("failed to load %s: %w: %w",
			config.ConfigFileName, err, cloudmig.ErrInvalidConfig)
	}

	provider, err := cloudmig.ParseProvider(projectCfg.Provider)
	if err != nil {
		return cloudmig.MigrationConfig{}, nil, err
	}

	authMethod, err := projectCfg.AuthMethod()
	if err != nil {
		return cloudmig.MigrationConfig{}, nil, err
	}

	region := projectCfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	token := projectCfg.API.Token
	if token == "" {
		token = os.Getenv("CLOUDMIG_API_TOKEN")
	}

	// Parameters: cloudmig.yaml < --params-file < CLI --param
	parameters := make(map[string]string)
	for k, v := range projectCfg.Params {
		parameters[k] = v
	}
	for _, paramsFile := range flags.paramsFiles {
		if verbose {
			fmt.Fprintf(os.Stderr, "[VERBOSE] Loading parameters from file: %s\n", paramsFile)
		}
		content, readErr := os.ReadFile(paramsFile)
		if readErr != nil {
			return cloudmig.MigrationConfig{}, nil, fmt.Errorf("failed to read params file %q: %w", paramsFile, readErr)
		}
		fileParams, parseErr := params.ParseEnvFile(content)
		if parseErr != nil {
			return cloudmig.MigrationConfig{}, nil, fmt.Errorf("failed to parse params file %q: %w: %w",
				paramsFile, parseErr, cloudmig.ErrInvalidConfig)
		}
		for k, v := range fileParams {
			parameters[k] = v
		}
	}
	cliParams, err := params.ParseKeyValuePairs(flags.params)
	if err != nil {
		return cloudmig.MigrationConfig{}, nil, fmt.Errorf("invalid parameter format: %w: %w", err, cloudmig.ErrInvalidConfig)
	}
	for k, v := range cliParams {
		parameters[k] = v
	}
	if verbose && len(cliParams) > 0 {
		fmt.Fprintf(os.Stderr, "[VERBOSE] CLI parameters override %d value(s)\n", len(cliParams))
	}

	// Apply timeout from cloudmig.yaml if --timeout wasn't explicitly set
	timeout := flags.timeout
	if projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, parseErr := time.ParseDuration(projectCfg.Timeout)
		if parseErr != nil {
			return cloudmig.MigrationConfig{}, nil, fmt.Errorf("invalid timeout in %s: %w: %w",
				config.ConfigFileName, parseErr, cloudmig.ErrInvalidConfig)
		}
		timeout = parsed
	}

	mcfg := cloudmig.MigrationConfig{
		ProjectPath:       projectPath,
		Provider:          provider,
		Region:            region,
		APIBaseURL:        projectCfg.API.BaseURL,
		AuthMethod:        authMethod,
		APIToken:          token,
		AzureTenantID:     projectCfg.API.AzureTenantID,
		AzureClientID:     projectCfg.API.AzureClientID,
		AzureClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),
		GoogleInstance:    projectCfg.GoogleInstance,
		Parameters:        parameters,
		Timeout:           timeout,
		Verbose:           verbose,
	}
	if err := mcfg.Validate(); err != nil {
		return cloudmig.MigrationConfig{}, nil, err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Configuration resolved:\n")
		fmt.Fprintf(os.Stderr, "  Provider: %s\n", mcfg.Provider)
		fmt.Fprintf(os.Stderr, "  Region: %s\n", mcfg.Region)
		fmt.Fprintf(os.Stderr, "  API: %s\n", mcfg.APIBaseURL)
		fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", mcfg.AuthMethod)
	}

	return mcfg, projectCfg, nil
}

// loadInventory parses the project's server inventory with parameter
// substitution applied.
func loadInventory(mcfg cloudmig.MigrationConfig, projectCfg *config.ProjectConfig) ([]cloudmig.ServerRecord, error) {
	path := filepath.Join(mcfg.ProjectPath, projectCfg.InventoryFile())
	return sheet.LoadFile(path, mcfg.Parameters)
}

// apiTokenProvider selects the credential source for management API calls.
// Static and AWS IAM projects authenticate the API with a pre-issued
// token (IAM tokens only apply to database endpoints); Azure Entra ID
// projects acquire management-plane tokens from azidentity.
func apiTokenProvider(mcfg cloudmig.MigrationConfig) (cloud.TokenProvider, error) {
	if mcfg.AuthMethod == cloudmig.AuthMethodAzureEntraID {
		if mcfg.AzureTenantID != "" && mcfg.AzureClientID != "" && mcfg.AzureClientSecret != "" {
			return cloud.NewAzureServicePrincipalProvider(
				mcfg.AzureTenantID, mcfg.AzureClientID, mcfg.AzureClientSecret, cloud.AzureManagementScope)
		}
		return cloud.NewAzureDefaultCredentialProvider(cloud.AzureManagementScope)
	}

	if mcfg.APIToken == "" {
		return nil, fmt.Errorf("management API token required: set api.token in %s or $CLOUDMIG_API_TOKEN: %w",
			config.ConfigFileName, cloudmig.ErrInvalidConfig)
	}
	return cloud.NewStaticTokenProvider(mcfg.APIToken), nil
}

// runDeps bundles the collaborators a validate or migrate run needs.
type runDeps struct {
	client   *cloud.Client
	prober   *cloud.Prober
	executor *retry.Executor
	stats    *retry.Stats
	logger   cloudmig.Logger
}

// buildRuntime wires the API client, the endpoint prober, and a retry
// executor recording into a shared stats instance.
func buildRuntime(mcfg cloudmig.MigrationConfig, projectCfg *config.ProjectConfig, verbose bool) (*runDeps, error) {
	logger := logging.NewConsoleLogger(verbose)

	tokens, err := apiTokenProvider(mcfg)
	if err != nil {
		return nil, err
	}
	client := cloud.NewClient(mcfg.APIBaseURL, tokens, cloud.WithLogger(logger))

	prober := cloud.NewProber(cloud.ProberConfig{
		AuthMethod:        mcfg.AuthMethod,
		Region:            mcfg.Region,
		GoogleInstance:    mcfg.GoogleInstance,
		AzureTenantID:     mcfg.AzureTenantID,
		AzureClientID:     mcfg.AzureClientID,
		AzureClientSecret: mcfg.AzureClientSecret,
		Logger:            logger,
	})

	policy, err := projectCfg.RetryPolicy()
	if err != nil {
		return nil, err
	}
	stats := retry.NewStats()
	executor, err := retry.NewExecutor(policy,
		retry.WithStats(stats),
		retry.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &runDeps{
		client:   client,
		prober:   prober,
		executor: executor,
		stats:    stats,
		logger:   logger,
	}, nil
}

// printStatsSummary reports retry statistics after a run, verbose only.
func printStatsSummary(rt *runDeps, verbose bool) {
	if !verbose {
		return
	}
	snap := rt.stats.Snapshot()
	fmt.Fprintf(os.Stderr, "\n[VERBOSE] Remote call statistics:\n")
	fmt.Fprintf(os.Stderr, "  Calls: %d (%d ok, %d failed, %.1f%% success)\n",
		snap.TotalCalls, snap.SuccessfulCalls, snap.FailedCalls, rt.stats.SuccessRate())
	fmt.Fprintf(os.Stderr, "  Retries: %d (max delay %s, avg delay %s)\n",
		snap.TotalRetries, snap.MaxDelay, snap.AvgDelay)
}
