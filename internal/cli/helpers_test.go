package cli

import (
	"bytes"
	"testing"

	"dynapipe/internal/config"
	"dynapipe/internal/output"
)

// commandResult captures one run of the command tree.
type commandResult struct {
	Stdout string
	Stderr string
	Err    error
}

// runCommand executes the root command against buffers with cfg preloaded.
func runCommand(t *testing.T, cfg *config.Config, args ...string) commandResult {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := &App{
		Config:  cfg,
		Printer: output.NewPrinterWithWriter(stderr),
	}

	rootCmd := NewRootCommand(app)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return commandResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
