package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/avetrov-io/cloudmig/internal/cli"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(cloudmig.ExitPanic)
		}
	}()

	if os.Getenv("CLOUDMIG_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(cloudmig.ExitCodeForError(err))
	}
}
