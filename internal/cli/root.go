package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `      _                 _           _
  ___| | ___  _   _  __| |_ __ ___ (_) __ _
 / __| |/ _ \| | | |/ _' | '_ ' _ \| |/ _' |
| (__| | (_) | |_| | (_| | | | | | | | (_| |
 \___|_|\___/ \__,_|\__,_|_| |_| |_|_|\__, |
                                      |___/`

var rootCmd = &cobra.Command{
	Use:   "cloudmig",
	Short: "Cloud database-server migration orchestrator",
	Long: asciiLogo + `

cloudmig validates and migrates fleets of database servers between cloud
tiers. A project directory holds cloudmig.yaml plus a servers.csv
inventory; servers migrate wave by wave through the provider's management
API, with every remote call retried under an exponential-backoff policy.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Management API or server endpoint unreachable
  12 - User denied cutover approval
  13 - One or more servers failed validation
  14 - Migration orchestration failed
  15 - Server inventory file not found`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for cloudmig")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
