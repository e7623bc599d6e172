package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/blueprint/internal/app"
	"github.com/specialistvlad/blueprint/internal/config"
)

// Exit codes of the blueprint binary.
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitUsage    = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly (help was shown),
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var parsed *app.Config
	root := newRootCommand(func(cfg *app.Config) { parsed = cfg })
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, usageError(err)
	}
	if parsed == nil {
		slog.Debug("No command ran, exiting after help output.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", parsed.Command)
	return parsed, false, nil
}

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	logFile    string
	workers    int
	strict     bool
	markdown   bool
	exclude    []string
	disable    []string
	blockTypes []string
}

// commandFlags are the union of the per-command flags.
type commandFlags struct {
	format          string
	selectPath      string
	write           bool
	check           bool
	output          string
	healthcheckPort int
	publishURL      string
	debounce        time.Duration
}

func newRootCommand(done func(*app.Config)) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "blueprint",
		Short: "Parse, validate and format BluePrint notation",
		Long: `blueprint reads BluePrint design notation from .bp, .bps and .blueprint files
(and fenced blueprint blocks in Markdown with --markdown).

PATH arguments may be files, directories or glob patterns (** supported).
Without PATH the paths of blueprint.yaml are used, or the current directory.

Exit codes: 0 ok, 1 syntax errors or validation errors, 2 usage or configuration errors.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "Path to a project file (default: nearest "+config.ProjectFile+").")
	pf.StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&g.logFile, "log-file", "", "Also append JSON log records to this file.")
	pf.IntVar(&g.workers, "workers", 0, "Number of files parsed concurrently (default: number of CPUs).")
	pf.BoolVar(&g.strict, "strict", false, "Treat validation warnings as errors.")
	pf.BoolVar(&g.markdown, "markdown", false, "Also read fenced blueprint blocks from Markdown files.")
	pf.StringSliceVar(&g.exclude, "exclude", nil, "Glob patterns of paths to skip.")
	pf.StringSliceVar(&g.disable, "disable", nil, "Validation rules to skip.")
	pf.StringSliceVar(&g.blockTypes, "block-types", nil, "Allowed root block types.")

	for _, sub := range []struct {
		name, short string
		flags       func(*cobra.Command, *commandFlags)
	}{
		{app.CommandParse, "Parse sources and print an outline or a serialized tree", parseFlags},
		{app.CommandValidate, "Parse and validate sources and print diagnostics", validateFlags},
		{app.CommandFmt, "Print, rewrite or check the canonical form of sources", fmtFlags},
		{app.CommandExport, "Export the workspace as JSON, YAML or HCL", exportFlags},
		{app.CommandWatch, "Validate again whenever a source changes", watchFlags},
	} {
		c := &commandFlags{}
		command := sub.name
		cmd := &cobra.Command{
			Use:   command + " [PATH...]",
			Short: sub.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := buildConfig(cmd, command, args, g, c)
				if err != nil {
					return err
				}
				done(cfg)
				return nil
			},
		}
		sub.flags(cmd, c)
		root.AddCommand(cmd)
	}

	return root
}

func parseFlags(cmd *cobra.Command, c *commandFlags) {
	cmd.Flags().StringVar(&c.format, "format", "", "Output format: 'outline' (default), 'json', 'yaml' or 'hcl'.")
	cmd.Flags().StringVar(&c.selectPath, "select", "", "Print only the node at this path, e.g. 'LinkedList<T>.properties.head'.")
}

func validateFlags(cmd *cobra.Command, c *commandFlags) {
	cmd.Flags().StringVar(&c.format, "format", "text", "Output format: 'text' or 'json'.")
}

func fmtFlags(cmd *cobra.Command, c *commandFlags) {
	cmd.Flags().BoolVarP(&c.write, "write", "w", false, "Rewrite files in place.")
	cmd.Flags().BoolVar(&c.check, "check", false, "List files that are not formatted and exit 1 if there are any.")
}

func exportFlags(cmd *cobra.Command, c *commandFlags) {
	cmd.Flags().StringVarP(&c.format, "format", "f", "json", "Export format: 'json', 'yaml' or 'hcl'.")
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "Write to this file instead of stdout.")
}

func watchFlags(cmd *cobra.Command, c *commandFlags) {
	cmd.Flags().StringVar(&c.format, "format", "text", "Report format: 'text' or 'json'.")
	cmd.Flags().IntVar(&c.healthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	cmd.Flags().StringVar(&c.publishURL, "publish-url", "", "socket.io endpoint that receives diagnostics snapshots.")
	cmd.Flags().DurationVar(&c.debounce, "debounce", 0, "Quiet period before changes are processed (default 300ms).")
}

// buildConfig layers the flags that were set over the project settings.
func buildConfig(cmd *cobra.Command, command string, args []string, g *globalFlags, c *commandFlags) (*app.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, usageError(err)
	}
	settings, err := config.Load(cmd.Context(), g.configFile, wd)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("Project settings loaded.", "file", settings.File)

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		settings.Log.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		settings.Log.Format = g.logFormat
	}
	if flags.Changed("log-file") {
		settings.Log.File = g.logFile
	}
	if flags.Changed("workers") {
		settings.Workers = g.workers
	}
	if flags.Changed("strict") {
		settings.Validation.Strict = g.strict
	}
	if flags.Changed("markdown") {
		settings.Markdown = g.markdown
	}
	if flags.Changed("exclude") {
		settings.Exclude = g.exclude
	}
	if flags.Changed("disable") {
		settings.Validation.Disabled = g.disable
	}
	if flags.Changed("block-types") {
		settings.Validation.BlockTypes = g.blockTypes
	}
	if flags.Changed("healthcheck-port") {
		settings.Watch.HealthcheckPort = c.healthcheckPort
	}
	if flags.Changed("publish-url") {
		settings.Watch.PublishURL = c.publishURL
	}
	if flags.Changed("debounce") {
		settings.Watch.Debounce = c.debounce
	}

	paths := args
	if len(paths) == 0 {
		paths = settings.Paths
	}

	cfg, err := app.NewConfig(app.Config{
		Command:         command,
		Paths:           paths,
		Exclude:         settings.Exclude,
		Markdown:        settings.Markdown,
		Format:          c.format,
		Select:          c.selectPath,
		Write:           c.write,
		Check:           c.check,
		OutputPath:      c.output,
		Strict:          settings.Validation.Strict,
		DisabledRules:   settings.Validation.Disabled,
		BlockTypes:      settings.Validation.BlockTypes,
		LogFormat:       settings.Log.Format,
		LogLevel:        settings.Log.Level,
		LogFile:         settings.Log.File,
		WorkerCount:     settings.Workers,
		HealthcheckPort: settings.Watch.HealthcheckPort,
		PublishURL:      settings.Watch.PublishURL,
		Debounce:        settings.Watch.Debounce,
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}
