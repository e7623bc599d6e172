// Package loader turns files, directories and glob arguments into a
// model.Workspace. Files are parsed concurrently; the workspace is always
// ordered by path.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/blueprint/internal/ctxlog"
	"github.com/specialistvlad/blueprint/internal/fsutil"
	"github.com/specialistvlad/blueprint/internal/markdown"
	"github.com/specialistvlad/blueprint/internal/model"
	"github.com/specialistvlad/blueprint/internal/parser"
)

// NotationExtensions are the file suffixes of BluePrint sources.
var NotationExtensions = []string{".bp", ".bps", ".blueprint"}

// MarkdownExtensions are scanned for fenced notation when Markdown is on.
var MarkdownExtensions = []string{".md", ".markdown"}

// Options tune a Loader.
type Options struct {
	// Markdown also collects Markdown files found in directories. A Markdown
	// file named explicitly is always read.
	Markdown bool
	// Exclude holds doublestar patterns relative to each directory argument.
	Exclude []string
	// Workers bounds the number of files parsed at once. Values below one
	// mean one.
	Workers int
}

// Result is the outcome of a load.
type Result struct {
	Workspace *model.Workspace
	// Files lists every file that was read, in discovery order.
	Files []string
	// Sources maps every file read to its content, including files that
	// failed to parse.
	Sources map[string][]byte
	// Diagnostics holds one error per file that failed to parse. Those files
	// are missing from the workspace.
	Diagnostics hcl.Diagnostics
}

// Loader discovers and parses BluePrint sources.
type Loader struct {
	opts Options
}

// New creates a Loader.
func New(opts Options) *Loader {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Loader{opts: opts}
}

// Load reads every source found under paths. A syntax error in one file does
// not stop the others; it is reported in Result.Diagnostics. Errors reading
// files or walking directories are returned as an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	started := time.Now()

	files, err := l.Discover(ctx, paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Source files discovered.", "count", len(files), "workers", l.opts.Workers)

	docs := make([]*model.Document, len(files))
	sources := make([][]byte, len(files))
	syntax := make([]*parser.SyntaxError, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			sources[i] = src

			doc, err := ParseSource(src, file)
			var syntaxErr *parser.SyntaxError
			switch {
			case errors.As(err, &syntaxErr):
				syntax[i] = syntaxErr
				return nil
			case err != nil:
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Workspace: model.NewWorkspace(),
		Files:     files,
		Sources:   make(map[string][]byte, len(files)),
	}
	for i, doc := range docs {
		result.Sources[files[i]] = sources[i]
		if syntax[i] != nil {
			logger.Debug("File has a syntax error.", "file", files[i], "line", syntax[i].Line())
			result.Diagnostics = append(result.Diagnostics, syntax[i].Diagnostic())
			continue
		}
		result.Workspace.Add(doc)
	}

	logger.Info("Sources loaded.",
		"files", len(files),
		"documents", len(result.Workspace.Documents),
		"syntax_errors", len(result.Diagnostics),
		"duration", time.Since(started),
	)
	return result, nil
}

// Discover expands paths into the files Load would read, sorted within each
// argument. An empty list means the current directory.
func (l *Loader) Discover(ctx context.Context, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	args, err := fsutil.ExpandArgs(paths)
	if err != nil {
		return nil, err
	}

	exts := NotationExtensions
	if l.opts.Markdown {
		exts = append(append([]string{}, NotationExtensions...), MarkdownExtensions...)
	}

	var files []string
	seen := make(map[string]bool)
	for _, arg := range args {
		found, err := fsutil.FindFiles(arg, fsutil.FindOptions{Extensions: exts, Exclude: l.opts.Exclude})
		if err != nil {
			return nil, fmt.Errorf("failed to find sources in %s: %w", arg, err)
		}
		if len(found) == 0 {
			ctxlog.FromContext(ctx).Warn("No BluePrint files found in path.", "path", arg)
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// ParseSource parses src as the kind of file path names.
func ParseSource(src []byte, path string) (*model.Document, error) {
	if model.KindFromPath(path) == model.KindMarkdown {
		return markdown.Parse(src, path)
	}
	return parser.Parse(src, path)
}
