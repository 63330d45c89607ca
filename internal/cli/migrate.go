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
	"github.com/avetrov-io/cloudmig/internal/ui"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <project_path>",
	Short: "Migrate the server inventory wave by wave",
	Long: `Migrate moves every server in the project inventory to its target tier,
one wave at a time in ascending wave order.

For each server the command:
1. Describes the server and verifies it is available
2. Starts replication to the target tier
3. Polls the migration job until it is ready for cutover
4. Requests cutover approval (interactive unless --force)
5. Cuts over and waits for the job to report cut_over

A failed server fails its wave and stops the remaining waves. Remote
calls are retried with exponential backoff under the project's retry
policy.

Cutover is DESTRUCTIVE for the source server: once a server is cut
over, clients are served by the migrated instance and the source is
retired. Without --force, each cutover requires typing the server ID
to confirm.

Arguments:
  project_path    Path to directory containing cloudmig.yaml and the
                  server inventory (servers.csv by default)

Examples:
  # Migrate interactively, confirming each cutover
  cloudmig migrate ./prod-fleet

  # Migrate without prompts (CI/CD pipelines)
  cloudmig migrate ./prod-fleet --force

  # Rehearse without calling any mutating API
  cloudmig migrate ./prod-fleet --dry-run

  # Migrate only wave 2
  cloudmig migrate ./prod-fleet --wave 2`,
	Args: RequireProjectPath,
	RunE: runMigrate,
}

type migrateFlagValues struct {
	runFlagValues
	force  bool
	dryRun bool
	wave   int
}

var migrateFlags migrateFlagValues

func init() {
	rootCmd.AddCommand(migrateCmd)
	registerRunFlags(migrateCmd, &migrateFlags.runFlagValues)

	migrateCmd.Flags().BoolVar(&migrateFlags.force, "force", false,
		"Skip interactive cutover approval prompts\n"+
			"A countdown warning is still printed before each cutover\n"+
			"Use for CI/CD pipelines")
	migrateCmd.Flags().BoolVar(&migrateFlags.dryRun, "dry-run", false,
		"Plan the run without starting replication or cutting over\n"+
			"Servers are described but no mutating API call is made")
	migrateCmd.Flags().IntVar(&migrateFlags.wave, "wave", 0,
		"Migrate only the given wave (default: all waves in ascending order)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	verbose := getVerboseFlag(cmd)

	if migrateFlags.wave < 0 {
		return fmt.Errorf("wave cannot be negative: %w", cloudmig.ErrInvalidConfig)
	}

	mcfg, projectCfg, err := buildMigrationConfig(cmd, &migrateFlags.runFlagValues, projectPath, verbose)
	if err != nil {
		return err
	}
	mcfg.Wave = migrateFlags.wave
	mcfg.DryRun = migrateFlags.dryRun
	mcfg.Force = migrateFlags.force

	servers, err := loadInventory(mcfg, projectCfg)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(mcfg, projectCfg, verbose)
	if err != nil {
		return err
	}
	defer rt.prober.Close()

	// Select approver implementation based on --force flag
	var approver cloudmig.Approver
	if migrateFlags.force {
		approver = ui.NewForcedApprover(verbose)
	} else {
		approver = ui.NewInteractiveApprover(verbose)
	}

	migrator := services.NewMigrationService(rt.client, approver, rt.executor, rt.logger)

	// Setup context with timeout and signal handling for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), mcfg.Timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling migration...")
		cancel()
	}()

	result, runErr := migrator.Migrate(ctx, servers, services.MigrateRequest{
		Wave:   migrateFlags.wave,
		DryRun: migrateFlags.dryRun,
	})
	if result != nil {
		printMigrationResult(result)
	}
	printStatsSummary(rt, verbose)

	if runErr != nil {
		return fmt.Errorf("migration failed: %w", runErr)
	}
	return nil
}

// printMigrationResult summarizes a migrate run on stderr, including a
// diagnosis for each failed server.
func printMigrationResult(result *cloudmig.MigrationResult) {
	var cutOver, failed int
	for _, sm := range result.Servers {
		if sm.Err != nil {
			failed++
		} else if sm.CutOver {
			cutOver++
		}
	}

	label := "Migration"
	if result.DryRun {
		label = "Dry run"
	}
	fmt.Fprintf(os.Stderr, "\n%s %s finished in %s\n", label, result.RunID, result.Duration.Round(10*time.Millisecond))
	fmt.Fprintf(os.Stderr, "  %d server(s) processed, %d cut over, %d failed\n",
		len(result.Servers), cutOver, failed)

	for _, sm := range result.Servers {
		if sm.Err == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "\n✗ %s (%s)\n%s\n", sm.Server.ServerID, sm.Server.Hostname, explain.Format(sm.Err))
	}
	if failed == 0 && !result.DryRun {
		fmt.Fprintln(os.Stderr, "\n✓ All servers migrated")
	}
}
