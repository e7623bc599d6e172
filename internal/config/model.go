package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Settings is the merged project configuration.
type Settings struct {
	// Paths are searched when no path argument is given. Relative entries
	// in a project file are relative to that file.
	Paths []string `yaml:"paths"`
	// Exclude holds doublestar patterns skipped during discovery.
	Exclude []string `yaml:"exclude"`
	// Markdown also scans Markdown files for fenced notation.
	Markdown bool `yaml:"markdown"`
	Workers  int  `yaml:"workers"`

	Log        LogSettings        `yaml:"log"`
	Validation ValidationSettings `yaml:"validation"`
	Watch      WatchSettings      `yaml:"watch"`

	// File is the project file the settings were read from, if any.
	File string `yaml:"-" ignored:"true"`
}

// LogSettings configures the application logger.
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File receives a copy of every log record when set.
	File string `yaml:"file"`
}

// ValidationSettings tune the advisory checks.
type ValidationSettings struct {
	// Strict turns warnings into errors.
	Strict   bool     `yaml:"strict"`
	Disabled []string `yaml:"disabled"`
	// BlockTypes, when set, is the closed list of root block types.
	BlockTypes []string `yaml:"block_types" split_words:"true"`
}

// WatchSettings configure watch mode.
type WatchSettings struct {
	Debounce        time.Duration `yaml:"debounce"`
	HealthcheckPort int           `yaml:"healthcheck_port" split_words:"true"`
	// PublishURL is a socket.io endpoint that receives diagnostics snapshots.
	PublishURL string `yaml:"publish_url" split_words:"true"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Paths:   []string{"."},
		Workers: runtime.NumCPU(),
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchSettings{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Validate checks values that every command depends on.
func (s *Settings) Validate() error {
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", s.Log.Level)
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", s.Log.Format)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	if s.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %s", s.Watch.Debounce)
	}
	if s.Watch.HealthcheckPort < 0 || s.Watch.HealthcheckPort > 65535 {
		return fmt.Errorf("healthcheck port %d is out of range", s.Watch.HealthcheckPort)
	}
	for _, pattern := range s.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}
