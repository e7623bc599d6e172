package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/blueprint/internal/ctxlog"
	"github.com/specialistvlad/blueprint/internal/loader"
	"github.com/specialistvlad/blueprint/internal/metrics"
	"github.com/specialistvlad/blueprint/internal/validate"
)

// ErrFindings is wrapped by the error Run returns when the workspace has
// syntax errors, validation errors or, for fmt --check, unformatted files.
var ErrFindings = errors.New("problems found")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     *loader.Loader
	validator  *validate.Validator
	metrics    *metrics.Collector
	httpServer *http.Server
	logFile    *os.File
}

// NewApp is the constructor for the main application. Command output goes to
// outW and log records to logW. It panics when the log file cannot be
// opened, since nothing useful can run without the requested logging.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config) *App {
	var (
		logFile *os.File
		extra   []io.Writer
	)
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			panic(fmt.Errorf("failed to create log directory: %w", err))
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		logFile = f
		extra = append(extra, f)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW, extra...)
	logger.Debug("Logger configured successfully.", "log_file", cfg.LogFile)

	disabled := make([]validate.RuleID, 0, len(cfg.DisabledRules))
	for _, id := range cfg.DisabledRules {
		disabled = append(disabled, validate.RuleID(id))
	}
	validator := validate.New(validate.Options{
		Disabled:         disabled,
		WarningsAsErrors: cfg.Strict,
		BlockTypes:       cfg.BlockTypes,
		Resolver:         loader.FileResolver{Roots: resolverRoots(cfg.Paths)},
	})
	logger.Debug("Validator configured.", "rules", len(validator.Rules()), "disabled", len(disabled))

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader.New(loader.Options{
			Markdown: cfg.Markdown,
			Exclude:  cfg.Exclude,
			Workers:  cfg.WorkerCount,
		}),
		validator: validator,
		metrics:   metrics.New(),
		logFile:   logFile,
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Metrics returns the application's metrics. This is primarily for testing.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}

// Close releases the resources NewApp and Run acquired.
func (a *App) Close() error {
	ctx := ctxlog.WithLogger(context.Background(), a.logger)
	err := a.closeHealthCheckServer(ctx)
	if a.logFile != nil {
		err = errors.Join(err, a.logFile.Close())
		a.logFile = nil
	}
	return err
}

// resolverRoots returns the directories file references may be relative to.
func resolverRoots(paths []string) []string {
	var roots []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.IsDir() {
			roots = append(roots, p)
		} else {
			roots = append(roots, filepath.Dir(p))
		}
	}
	return roots
}
