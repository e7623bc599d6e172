package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/specialistvlad/blueprint/internal/export"
	"github.com/specialistvlad/blueprint/internal/validate"
)

// Commands understood by App.Run.
const (
	CommandParse    = "parse"
	CommandValidate = "validate"
	CommandFmt      = "fmt"
	CommandExport   = "export"
	CommandWatch    = "watch"
)

// Commands lists every command in help order.
var Commands = []string{CommandParse, CommandValidate, CommandFmt, CommandExport, CommandWatch}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	Paths   []string

	Exclude  []string
	Markdown bool

	// Format is the output format of parse, validate and export.
	Format string
	// Select is a node path printed by parse instead of the whole workspace.
	Select string
	// Write and Check are the fmt modes.
	Write bool
	Check bool
	// OutputPath redirects export output to a file.
	OutputPath string

	Strict        bool
	DisabledRules []string
	BlockTypes    []string

	LogFormat   string
	LogLevel    string
	LogFile     string
	WorkerCount int

	HealthcheckPort int
	PublishURL      string
	Debounce        time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if !slices.Contains(Commands, cfg.Command) {
		return nil, fmt.Errorf("unknown command %q: must be one of %s", cfg.Command, strings.Join(Commands, ", "))
	}
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}

	if err := checkFormat(&cfg); err != nil {
		return nil, err
	}
	if cfg.Select != "" && cfg.Command != CommandParse {
		return nil, errors.New("--select is only valid for parse")
	}
	if cfg.Write && cfg.Check {
		return nil, errors.New("--write and --check cannot be used together")
	}
	if cfg.OutputPath != "" && cfg.Command != CommandExport {
		return nil, errors.New("--output is only valid for export")
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}

	known := validate.New(validate.Options{}).Rules()
	for _, rule := range cfg.DisabledRules {
		if !slices.Contains(known, validate.RuleID(rule)) {
			return nil, fmt.Errorf("unknown validation rule %q", rule)
		}
	}

	return &cfg, nil
}

func checkFormat(cfg *Config) error {
	switch cfg.Command {
	case CommandParse:
		if cfg.Format == "" || cfg.Format == "outline" {
			cfg.Format = ""
			return nil
		}
	case CommandExport:
		if cfg.Format == "" {
			cfg.Format = string(export.FormatJSON)
		}
	case CommandValidate, CommandWatch:
		switch cfg.Format {
		case "", "text":
			cfg.Format = "text"
			return nil
		case "json":
			return nil
		}
		return fmt.Errorf("invalid format %q for %s: must be 'text' or 'json'", cfg.Format, cfg.Command)
	default:
		if cfg.Format != "" {
			return fmt.Errorf("--format is not valid for %s", cfg.Command)
		}
		return nil
	}

	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	cfg.Format = string(format)
	return nil
}
