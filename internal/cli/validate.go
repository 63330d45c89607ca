package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avetrov-io/cloudmig/internal/explain"
	"github.com/avetrov-io/cloudmig/internal/services"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project_path>",
	Short: "Validate the server inventory before migrating",
	Long: `Validate checks every server in the project inventory without changing
anything. For each server it:

1. Describes the server through the cloud management API
2. Verifies the server is in the "available" state
3. Verifies the declared engine matches what the API reports
4. Probes the database endpoint with the configured authentication method

Remote calls are retried with exponential backoff; a server that still
fails is recorded in the report and validation continues with the rest
of the inventory.

Arguments:
  project_path    Path to directory containing cloudmig.yaml and the
                  server inventory (servers.csv by default)

Examples:
  # Validate a project
  cloudmig validate ./prod-fleet

  # Validate with parameter substitution in the inventory
  cloudmig validate ./prod-fleet --param tier=db.r6g.large

  # Validate with credentials from a .env file
  cloudmig validate ./prod-fleet --env-file prod.env`,
	Args: RequireProjectPath,
	RunE: runValidate,
}

var validateFlags runFlagValues

func init() {
	rootCmd.AddCommand(validateCmd)
	registerRunFlags(validateCmd, &validateFlags)
}

func runValidate(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	verbose := getVerboseFlag(cmd)

	mcfg, projectCfg, err := buildMigrationConfig(cmd, &validateFlags, projectPath, verbose)
	if err != nil {
		return err
	}

	servers, err := loadInventory(mcfg, projectCfg)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(mcfg, projectCfg, verbose)
	if err != nil {
		return err
	}
	defer rt.prober.Close()

	validator := services.NewValidationService(rt.client, rt.prober, rt.executor, rt.logger)

	// Setup context with timeout and signal handling for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), mcfg.Timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling validation...")
		cancel()
	}()

	report, err := validator.Validate(ctx, servers)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	printValidationReport(report)
	printStatsSummary(rt, verbose)

	if !report.Passed() {
		return fmt.Errorf("%d of %d server(s) failed validation: %w",
			len(report.Failed()), len(report.Servers), cloudmig.ErrValidationFailed)
	}
	return nil
}

// printValidationReport summarizes a validate run on stderr. Per-server
// progress lines were already printed by the service's logger; this adds
// the totals and a diagnosis for each failure.
func printValidationReport(report *cloudmig.ValidationReport) {
	failed := report.Failed()

	fmt.Fprintf(os.Stderr, "\nValidation run %s finished in %s\n", report.RunID, report.Duration.Round(10*time.Millisecond))
	fmt.Fprintf(os.Stderr, "  %d server(s) checked, %d passed, %d failed\n",
		len(report.Servers), len(report.Servers)-len(failed), len(failed))

	for _, sv := range failed {
		fmt.Fprintf(os.Stderr, "\n✗ %s (%s)\n%s\n", sv.Server.ServerID, sv.Server.Hostname, explain.Format(sv.Err))
	}
	if len(failed) == 0 {
		fmt.Fprintln(os.Stderr, "\n✓ All servers passed validation")
	}
}
