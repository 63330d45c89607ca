package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avetrov-io/cloudmig/internal/config"
	"github.com/avetrov-io/cloudmig/internal/sheet"
	"github.com/avetrov-io/cloudmig/internal/tui"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new cloudmig project",
	Long: `Initialize a cloudmig project into the specified directory.

The init command creates:
- cloudmig.yaml with the provider, region, and management API endpoint
- servers.csv inventory with sample rows

When run in a terminal, an interactive wizard collects the provider,
region, and API endpoint. In CI (or with --provider and --api-url set)
the wizard is skipped and flag values are used directly.

Target files must not already exist; init never overwrites.

Examples:
  cloudmig init .                    # Initialize in current directory
  cloudmig init ./prod-fleet         # Initialize in ./prod-fleet

  # Non-interactive (CI)
  cloudmig init ./prod-fleet --provider aws --region us-west-2 \
    --api-url https://migration.api.example.com`,
	Args: RequireProjectPath,
	RunE: runInit,
}

type initFlagValues struct {
	provider string
	region   string
	apiURL   string
}

var initFlags initFlagValues

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initFlags.provider, "provider", "",
		"Cloud provider: aws | azure | google")
	initCmd.Flags().StringVar(&initFlags.region, "region", "",
		"Cloud region, e.g. us-west-2")
	initCmd.Flags().StringVar(&initFlags.apiURL, "api-url", "",
		"Management API base URL")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := args[0]
	verbose := getVerboseFlag(cmd)

	setup, err := resolveProjectSetup()
	if err != nil {
		return err
	}
	if setup.Cancelled {
		fmt.Fprintln(os.Stderr, "Setup cancelled")
		return nil
	}

	if _, err := cloudmig.ParseProvider(setup.Provider); err != nil {
		return err
	}
	if setup.APIBaseURL == "" {
		return fmt.Errorf("management API base URL required: set --api-url or run init in a terminal: %w",
			cloudmig.ErrInvalidConfig)
	}

	if err := os.MkdirAll(targetPath, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", targetPath, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Scaffolding project in %s (provider %s)\n", targetPath, setup.Provider)
	}

	if err := config.WriteTemplate(targetPath, setup.Provider, setup.Region, setup.APIBaseURL); err != nil {
		return err
	}
	inventoryPath := filepath.Join(targetPath, cloudmig.InventoryFileName)
	if err := sheet.WriteTemplate(inventoryPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n✓ Project initialized in '%s'\n\n", targetPath)
	fmt.Fprintln(os.Stderr, "Created:")
	fmt.Fprintf(os.Stderr, "  %s\n", filepath.Join(targetPath, config.ConfigFileName))
	fmt.Fprintf(os.Stderr, "  %s\n", inventoryPath)

	fmt.Fprintln(os.Stderr, "\nNext steps:")
	fmt.Fprintf(os.Stderr, "  # Edit %s with your server fleet, then:\n", cloudmig.InventoryFileName)
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  cloudmig validate %s\n", targetPath)
		fmt.Fprintf(os.Stderr, "  cloudmig migrate %s --dry-run\n", targetPath)
	} else {
		fmt.Fprintln(os.Stderr, "  cloudmig validate .")
		fmt.Fprintln(os.Stderr, "  cloudmig migrate . --dry-run")
	}
	return nil
}

// resolveProjectSetup decides between flag values and the interactive
// wizard. Flags always win; the wizard only runs in a terminal and only
// when the provider or API URL is missing.
func resolveProjectSetup() (tui.ProjectSetup, error) {
	setup := tui.ProjectSetup{
		Provider:   initFlags.provider,
		Region:     initFlags.region,
		APIBaseURL: initFlags.apiURL,
	}
	if setup.Provider != "" && setup.APIBaseURL != "" {
		return setup, nil
	}
	if !tui.IsInteractive() {
		if setup.Provider == "" {
			setup.Provider = "aws"
		}
		return setup, nil
	}

	wizardSetup, err := tui.RunSetupWizard()
	if err != nil {
		return tui.ProjectSetup{}, fmt.Errorf("setup wizard failed: %w", err)
	}
	// Flags override wizard answers
	if setup.Provider != "" {
		wizardSetup.Provider = setup.Provider
	}
	if setup.Region != "" {
		wizardSetup.Region = setup.Region
	}
	if setup.APIBaseURL != "" {
		wizardSetup.APIBaseURL = setup.APIBaseURL
	}
	return wizardSetup, nil
}
