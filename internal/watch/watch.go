// Package watch reruns a callback when a task's file dependencies change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/snek/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before running the callback.
const DefaultDebounce = 200 * time.Millisecond

// DefaultIgnore are patterns, relative to the project directory, whose
// events are never reported.
var DefaultIgnore = []string{".git/**", ".venv/**", ".tox/**", "**/__pycache__/**"}

// Watcher watches the directories holding a fixed list of files.
type Watcher struct {
	Dir      string
	Files    []string
	Ignore   []string
	Debounce time.Duration

	files map[string]bool
}

// New creates a Watcher for files (relative to dir or absolute). stateDir,
// when not empty, is ignored as well.
func New(dir string, files []string, stateDir string) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New("nothing to watch: no file dependencies")
	}
	ignore := append([]string(nil), DefaultIgnore...)
	if stateDir != "" {
		ignore = append(ignore, filepath.ToSlash(filepath.Clean(stateDir))+"/**")
	}
	w := &Watcher{
		Dir:      dir,
		Files:    files,
		Ignore:   ignore,
		Debounce: DefaultDebounce,
		files:    make(map[string]bool),
	}
	for _, f := range files {
		w.files[w.abs(f)] = true
	}
	return w, nil
}

func (w *Watcher) abs(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.Dir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Dirs returns the sorted directories holding files that are not ignored.
func (w *Watcher) Dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for f := range w.files {
		if !w.Relevant(f) {
			continue
		}
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Relevant reports whether an event on path should trigger a run.
func (w *Watcher) Relevant(path string) bool {
	abs := w.abs(path)
	if !w.files[abs] {
		return false
	}
	rel, err := filepath.Rel(w.abs(w.Dir), abs)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

// Run blocks until ctx is cancelled, calling fn with the changed files after
// each settled burst of changes. An error from fn is logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	for _, d := range w.Dirs() {
		if err := fsw.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
		logger.Debug("watching %s", d)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.Relevant(event.Name) {
				continue
			}
			logger.Debug("file event %s %s", event.Op, event.Name)
			pending[w.abs(event.Name)] = true
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)

			if err := fn(ctx, changed); err != nil {
				logger.Warn("run after change failed: %v", err)
			}
		}
	}
}
