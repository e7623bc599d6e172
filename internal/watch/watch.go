// Package watch reports changes to BluePrint sources. File system events are
// collected until the tree has been quiet for a debounce interval and then
// delivered as one sorted batch; writes that leave a file's content
// unchanged are dropped.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/specialistvlad/blueprint/internal/ctxlog"
	"github.com/specialistvlad/blueprint/internal/fsutil"
)

// Op is the kind of change.
type Op string

const (
	OpCreate Op = "create"
	OpModify Op = "modify"
	OpDelete Op = "delete"
)

// Event is one changed file.
type Event struct {
	Path string
	Op   Op
}

// HandlerFunc receives every non-empty batch of events.
type HandlerFunc func(ctx context.Context, events []Event)

// Options configure a Watcher.
type Options struct {
	// Extensions selects the files to report. Required.
	Extensions []string
	// Exclude holds doublestar patterns relative to the watched root.
	Exclude  []string
	Debounce time.Duration
}

// Watcher watches directory trees and single files.
type Watcher struct {
	opts    Options
	fsw     *fsnotify.Watcher
	roots   []string
	files   map[string]bool // roots that are files
	hashes  map[string]string
	pending map[string]fsnotify.Op
}

// New creates a Watcher on roots and records the current content of every
// matching file, so only later changes are reported.
func New(ctx context.Context, opts Options, roots ...string) (*Watcher, error) {
	if len(opts.Extensions) == 0 {
		return nil, errors.New("watch: at least one extension is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		fsw:     fsw,
		files:   make(map[string]bool),
		hashes:  make(map[string]string),
		pending: make(map[string]fsnotify.Op),
	}
	for _, root := range roots {
		if err := w.add(ctx, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		w.files[abs] = true
		w.seed(abs)
		return w.fsw.Add(filepath.Dir(abs))
	}

	w.roots = append(w.roots, abs)
	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != abs && w.skipped(path, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			w.seed(path)
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to watch directory.", "path", path, "error", err)
		}
		return nil
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers batches to fn until ctx is done or the watcher is closed.
// It returns nil in both cases. A batch is delivered once no event has
// arrived for the debounce interval. fn runs on the watcher goroutine;
// events arriving meanwhile are kept for the next batch.
func (w *Watcher) Run(ctx context.Context, fn HandlerFunc) error {
	logger := ctxlog.FromContext(ctx)
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	logger.Info("Watching for changes.", "roots", len(w.roots)+len(w.files), "debounce", w.opts.Debounce)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ctx, event) {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error.", "error", err)

		case <-timer.C:
			if events := w.flush(); len(events) > 0 {
				logger.Debug("Changes detected.", "count", len(events))
				fn(ctx, events)
			}
		}
	}
}

// handle records event and reports whether anything became pending.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) bool {
	path := event.Name
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.underRoot(path) || w.skipped(path, true) {
				return false
			}
			return w.addDir(ctx, path)
		}
	}
	if !w.relevant(path) {
		return false
	}
	w.pending[path] |= event.Op
	return true
}

// addDir watches a directory that appeared under a root, together with its
// subdirectories. Files already inside it are queued as created, since they
// may have been written before the watch was in place.
func (w *Watcher) addDir(ctx context.Context, dir string) bool {
	queued := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != dir && w.skipped(path, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				ctxlog.FromContext(ctx).Warn("Failed to watch new directory.", "path", path, "error", err)
			}
			return nil
		}
		if w.relevant(path) {
			w.pending[path] |= fsnotify.Create
			queued = true
		}
		return nil
	})
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to scan new directory.", "path", dir, "error", err)
	}
	return queued
}

// flush turns pending file system events into change events.
func (w *Watcher) flush() []Event {
	if len(w.pending) == 0 {
		return nil
	}

	var events []Event
	for path := range w.pending {
		old, known := w.hashes[path]
		content, err := os.ReadFile(path)
		if err != nil {
			if known {
				delete(w.hashes, path)
				events = append(events, Event{Path: path, Op: OpDelete})
			}
			continue
		}

		hash := contentHash(content)
		if known && old == hash {
			continue
		}
		w.hashes[path] = hash
		op := OpModify
		if !known {
			op = OpCreate
		}
		events = append(events, Event{Path: path, Op: op})
	}
	clear(w.pending)

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

func (w *Watcher) seed(path string) {
	if !w.relevant(path) {
		return
	}
	if content, err := os.ReadFile(path); err == nil {
		w.hashes[path] = contentHash(content)
	}
}

// relevant reports whether a file path is one the caller asked about.
func (w *Watcher) relevant(path string) bool {
	if w.files[path] {
		return true
	}
	return fsutil.HasExtension(path, w.opts.Extensions) && w.underRoot(path) && !w.skipped(path, false)
}

func (w *Watcher) underRoot(path string) bool {
	return w.rootOf(path) != ""
}

func (w *Watcher) rootOf(path string) string {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

// skipped reports whether path is excluded or lies in a hidden directory.
func (w *Watcher) skipped(path string, isDir bool) bool {
	root := w.rootOf(path)
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	parts := strings.Split(rel, "/")
	if !isDir {
		parts = parts[:len(parts)-1]
	}
	for _, part := range parts {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
