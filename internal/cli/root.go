// Package cli implements the dynapipe command tree with Cobra.
//
// The root command generates the pipeline document; `scenarios` lists the
// scenario table. Dependencies live in [App] so tests can run the command
// tree against buffers without exiting the process.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dynapipe/internal/config"
	"dynapipe/internal/log"
	"dynapipe/internal/output"
	"dynapipe/internal/pipeline"
	"dynapipe/internal/render"
	"dynapipe/internal/scenario"
	"dynapipe/internal/validate"
)

// App holds the dependencies shared by all commands.
type App struct {
	// Config is loaded in the root PersistentPreRunE when nil.
	Config *config.Config

	// Printer receives human-readable summaries (stderr in production).
	Printer *output.Printer
}

type rootOptions struct {
	flags      scenario.Flags
	format     string
	outputPath string
	configPath string
	logLevel   string
	strict     bool
	quiet      bool
}

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dynapipe",
		Short: "Generate the dynamic CI deployment pipeline",
		Long: `Generate the dynamic CI deployment pipeline and print it for upload.

Without flags a single-region deployment trigger is generated. The document
goes to stdout (or --output); the step summary goes to stderr.

Example:
  dynapipe --enable-multi-region-deploy | buildkite-agent pipeline upload`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Init(opts.logLevel, cmd.ErrOrStderr())
			if app.Printer == nil {
				app.Printer = output.NewPrinterWithWriter(cmd.ErrOrStderr())
			}
			if app.Config != nil {
				return nil
			}
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				app.Printer.Error(err)
				return NewExitError(1)
			}
			app.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, app, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.flags.EnableMultiRegionDeploy, "enable-multi-region-deploy", false, "Enable multi-region deployment CI")
	f.BoolVar(&opts.flags.ReTriggerDBReset, "re-trigger-db-reset", false, "Re-trigger CI deployment for DB reset")
	f.BoolVar(&opts.flags.DisableCIDeploy, "disable-ci-deploy", false, "Disable CI deployment")
	f.BoolVar(&opts.flags.DisablePreviousDeploy, "disable-previous-deploy", false, "Disable the previous territory's CI deployment when the agent reports one")
	f.StringVarP(&opts.format, "format", "f", "yaml", "Output format: yaml or json")
	f.StringVarP(&opts.outputPath, "output", "o", "", "Write the document to a file instead of stdout")
	f.BoolVar(&opts.strict, "strict", false, "Reject duplicate keys, unknown dependencies and cycles")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the step summary")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default ./dynapipe.yaml or $"+config.ConfigPathEnv+")")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	cmd.AddCommand(newScenariosCommand(app))

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		return loader.LoadFromFile(path)
	}
	return loader.Load()
}

func runGenerate(cmd *cobra.Command, app *App, opts *rootOptions) error {
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		app.Printer.Error(err)
		return NewExitError(1)
	}

	p, err := scenario.Build(app.Config, opts.flags)
	if err != nil {
		app.Printer.Error(err)
		return NewExitError(1)
	}

	if opts.strict || app.Config.Strict {
		report, err := validate.Pipeline(p)
		if err != nil {
			app.Printer.Error(err)
			return NewExitError(1)
		}
		log.Debug("pipeline validated", "order", report.Order)
	}

	doc := p.Document()
	if err := writeDocument(cmd, doc, format, opts.outputPath); err != nil {
		app.Printer.Error(err)
		return NewExitError(1)
	}

	if !opts.quiet {
		app.Printer.Summary(p.Label(), doc)
	}
	return nil
}

func writeDocument(cmd *cobra.Command, doc pipeline.Document, format render.Format, path string) error {
	if path != "" {
		log.Info("writing pipeline", "path", path, "format", string(format))
		return render.WriteFile(path, doc, format)
	}
	return render.Encode(cmd.OutOrStdout(), doc, format)
}

// ExecuteResult is the outcome of running the command tree.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// RunWithConfig runs the command tree with args and a preloaded cfg. A nil
// cfg makes the root command load configuration itself.
func RunWithConfig(cfg *config.Config, args []string) ExecuteResult {
	app := &App{Config: cfg, Printer: output.NewPrinter()}
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		// Cobra's own errors (unknown flag, extra args) are not printed yet.
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{}
}

// Execute runs dynapipe with the process arguments and exits with the
// resulting code.
func Execute() {
	result := RunWithConfig(nil, os.Args[1:])
	os.Exit(result.ExitCode)
}
