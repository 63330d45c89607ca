package ui

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

//go:embed assets/cutover_warning.txt
var cutoverWarning string

// ForcedApprover implements the Approver interface for forced
// (non-interactive) cutover approval. It displays a countdown and
// automatically approves after the countdown, used when the --force
// flag is provided.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover.
func NewForcedApprover(verbose bool) cloudmig.Approver {
	return &ForcedApprover{
		verbose: verbose,
		output:  os.Stderr,
		sleepFn: time.Sleep,
	}
}

// RequestApproval displays a countdown and automatically approves after it.
func (a *ForcedApprover) RequestApproval(ctx context.Context, serverID string) (bool, error) {
	warningText := strings.ReplaceAll(cutoverWarning, "${server}", serverID)
	fmt.Fprintln(a.output)
	fmt.Fprint(a.output, warningText)
	fmt.Fprintln(a.output)

	countdownSeconds := int(cloudmig.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rCutting over in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(1 * time.Second)
		}
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with cutover...                              \n")
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ cloudmig.Approver = (*ForcedApprover)(nil)
