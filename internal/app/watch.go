package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/ctxlog"
	"github.com/specialistvlad/blueprint/internal/fsutil"
	"github.com/specialistvlad/blueprint/internal/loader"
	"github.com/specialistvlad/blueprint/internal/publish"
	"github.com/specialistvlad/blueprint/internal/watch"
)

// watch validates the workspace, then again after every change, until ctx
// is cancelled. Findings never end the loop.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	roots, err := fsutil.ExpandArgs(a.config.Paths)
	if err != nil {
		return err
	}
	exts := loader.NotationExtensions
	if a.config.Markdown {
		exts = append(append([]string{}, exts...), loader.MarkdownExtensions...)
	}
	w, err := watch.New(ctx, watch.Options{
		Extensions: exts,
		Exclude:    a.config.Exclude,
		Debounce:   a.config.Debounce,
	}, roots...)
	if err != nil {
		return fmt.Errorf("failed to watch sources: %w", err)
	}
	defer w.Close()

	if a.config.HealthcheckPort > 0 {
		if _, err := a.startHealthCheckServer(ctx, a.config.HealthcheckPort); err != nil {
			return err
		}
	}

	var pub *publish.Publisher
	if a.config.PublishURL != "" {
		pub, err = publish.Dial(ctx, a.config.PublishURL, publish.Options{})
		if err != nil {
			// Watching is still useful without an editor attached.
			logger.Warn("Publisher unavailable, diagnostics will not be published.", "error", err)
		} else {
			defer pub.Close()
		}
	}

	a.recheck(ctx, pub)
	err = w.Run(ctx, func(ctx context.Context, events []watch.Event) {
		for _, e := range events {
			logger.Info("Source changed.", "file", e.Path, "op", e.Op)
		}
		a.recheck(ctx, pub)
	})
	logger.Info("Watch stopped.")
	return err
}

// recheck runs one validation pass and reports it to the output, the
// metrics and the publisher.
func (a *App) recheck(ctx context.Context, pub *publish.Publisher) {
	logger := ctxlog.FromContext(ctx)
	started := time.Now()

	res, diags, err := a.check(ctx)
	if err != nil {
		logger.Error("Check failed.", "error", err)
		return
	}
	a.metrics.RecordCheck(len(res.Files), diags, time.Since(started))

	report := bphcl.NewReport(len(res.Files), diags)
	if a.config.Format == "json" {
		if err := report.WriteJSON(a.outW); err != nil {
			logger.Error("Failed to write report.", "error", err)
		}
	} else {
		if err := a.writeDiagnostics(res, diags); err != nil {
			logger.Error("Failed to write diagnostics.", "error", err)
		}
		fmt.Fprintf(a.outW, "[%s] %d files checked: %d errors, %d warnings\n",
			time.Now().Format(time.TimeOnly), report.Files, report.Errors, report.Warnings)
	}

	if pub == nil {
		return
	}
	snap := publish.NewSnapshot(len(res.Files), diags)
	if err := pub.Publish(ctx, snap); err != nil {
		a.metrics.PublishFailures.Inc()
		logger.Warn("Failed to publish diagnostics.", "error", err)
	}
}
