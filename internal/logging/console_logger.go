// Package logging provides the cloudmig.Logger implementations used by
// the CLI: a mutex-guarded console logger and a silent logger for tests.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleLogger writes log lines to stderr. The mutex keeps concurrent
// lines from interleaving; safe to share across services and executors.
type ConsoleLogger struct {
	verbose bool
	mu      sync.Mutex
	out     io.Writer
}

// NewConsoleLogger creates a ConsoleLogger. When verbose is false,
// Verbose calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return &ConsoleLogger{verbose: verbose, out: os.Stderr}
}

// Verbose logs diagnostic detail, only in verbose mode.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("[VERBOSE] ", format, args)
}

// Info logs progress of normal operation.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Error logs failures.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("[ERROR] ", format, args)
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(args) == 0 {
		// Keep literal % sequences intact when there is nothing to format.
		fmt.Fprint(l.out, prefix+format+"\n")
		return
	}
	fmt.Fprintf(l.out, prefix+format+"\n", args...)
}
