package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the server ID to
// confirm the cutover.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover.
func NewInteractiveApprover(verbose bool) cloudmig.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
	}
}

// RequestApproval prompts the user to type the server ID to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, serverID string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: You are about to CUT OVER server '%s'\n", serverID)
	fmt.Fprintln(a.output, "The source server stops accepting writes and traffic moves to the migrated server. This cannot be undone from this tool!")
	fmt.Fprintf(a.output, "\nTo confirm, type the server ID '%s' and press Enter: ", serverID)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == serverID {
			fmt.Fprintln(a.output, "✓ Confirmed. Proceeding with cutover...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match server ID '%s'. Operation cancelled.\n", input, serverID)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ cloudmig.Approver = (*InteractiveApprover)(nil)
