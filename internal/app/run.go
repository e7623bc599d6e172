package app

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/ctxlog"
	"github.com/specialistvlad/blueprint/internal/export"
	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/nodepath"
	"github.com/specialistvlad/blueprint/internal/parser"
	"github.com/specialistvlad/blueprint/internal/printer"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command, "paths", a.config.Paths)
	defer a.logger.Debug("App.Run method finished.")

	switch a.config.Command {
	case CommandParse:
		return a.parse(ctx)
	case CommandValidate:
		return a.validate(ctx)
	case CommandFmt:
		return a.format(ctx)
	case CommandExport:
		return a.export(ctx)
	case CommandWatch:
		return a.watch(ctx)
	}
	return fmt.Errorf("unknown command %q", a.config.Command)
}

func (a *App) parse(ctx context.Context) error {
	res, err := a.loadValid(ctx)
	if err != nil {
		return err
	}
	ws := res.Workspace

	if a.config.Select != "" {
		addr, err := nodepath.Parse(a.config.Select)
		if err != nil {
			return fmt.Errorf("invalid --select: %w", err)
		}
		doc, v, err := nodepath.ResolveWorkspace(ws, addr)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFindings, err)
		}
		a.logger.Debug("Selected node.", "path", addr.String(), "file", doc.Path)
		if a.config.Format == "" {
			_, err := fmt.Fprintln(a.outW, printer.Value(v))
			return err
		}
		return export.WriteValue(a.outW, export.Format(a.config.Format), v)
	}

	if a.config.Format == "" {
		return printer.Outline(a.outW, ws)
	}
	return export.Write(a.outW, export.Format(a.config.Format), ws)
}

func (a *App) validate(ctx context.Context) error {
	res, diags, err := a.check(ctx)
	if err != nil {
		return err
	}

	report := bphcl.NewReport(len(res.Files), diags)
	if a.config.Format == "json" {
		if err := report.WriteJSON(a.outW); err != nil {
			return err
		}
	} else {
		if err := a.writeDiagnostics(res, diags); err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "%d files checked: %d errors, %d warnings\n", report.Files, report.Errors, report.Warnings)
	}

	a.logger.Info("Validation finished.", "files", report.Files, "errors", report.Errors, "warnings", report.Warnings)
	if report.Errors > 0 {
		return fmt.Errorf("%w: %d errors, %d warnings", ErrFindings, report.Errors, report.Warnings)
	}
	return nil
}

// format prints, rewrites or checks the canonical form of every notation
// file. Markdown documents are left alone.
func (a *App) format(ctx context.Context) error {
	res, err := a.loadValid(ctx)
	if err != nil {
		return err
	}

	var docs []*model.Document
	for _, doc := range res.Workspace.Documents {
		if doc.Kind == model.KindMarkdown {
			a.logger.Debug("Skipping Markdown file.", "file", doc.Path)
			continue
		}
		docs = append(docs, doc)
	}

	var changed, skipped int
	for _, doc := range docs {
		formatted := printer.Format(doc)
		same := bytes.Equal(formatted, doc.Source)

		if (a.config.Check || a.config.Write) && !same && parser.HasComments(doc.Source) {
			skipped++
			a.logger.Warn("File has comments, which formatting would drop; skipped.", "file", doc.Path)
			continue
		}

		switch {
		case a.config.Check:
			if !same {
				changed++
				fmt.Fprintln(a.outW, doc.Path)
			}
		case a.config.Write:
			if same {
				continue
			}
			if err := rewrite(doc.Path, formatted); err != nil {
				return err
			}
			changed++
			a.logger.Info("Formatted file.", "file", doc.Path)
		default:
			if len(docs) > 1 {
				fmt.Fprintf(a.outW, "// %s\n", doc.Path)
			}
			if _, err := a.outW.Write(formatted); err != nil {
				return err
			}
		}
	}

	if a.config.Check && changed > 0 {
		return fmt.Errorf("%w: %d files are not formatted", ErrFindings, changed)
	}
	if a.config.Write {
		a.logger.Info("Formatting finished.", "rewritten", changed, "skipped", skipped)
	}
	return nil
}

// rewrite replaces the content of path, keeping its permissions.
func rewrite(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *App) export(ctx context.Context) error {
	res, err := a.loadValid(ctx)
	if err != nil {
		return err
	}

	format := export.Format(a.config.Format)
	if a.config.OutputPath == "" {
		if err := export.Write(a.outW, format, res.Workspace); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return nil
	}

	f, err := os.Create(a.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := export.Write(f, format, res.Workspace); err != nil {
		f.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	a.logger.Info("Export written.", "file", a.config.OutputPath, "format", format)
	return nil
}
