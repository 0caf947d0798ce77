// Command chemsplit is the CLI entry point for the ChemSplit-QC toolkit.
package main

import (
	"os"

	"github.com/turtacn/ChemSplit-QC/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

// Execute prints any error through the cli package's uniform error
// formatting, so main only sets the exit code.
func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
