// Package watch reports settled changes to a corpus tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/medrag/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before a change
// is reported.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called once per settled batch of changes with the paths
// that changed, sorted and deduplicated.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher watches a directory tree for changes to files with matching
// extensions. fsnotify watches are not recursive, so every directory is
// added individually and new directories are added as they appear.
type Watcher struct {
	root       string
	extensions []string
	debounce   time.Duration
	onChange   ChangeFunc
	fsw        *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions restricts reported changes to these file extensions.
// An empty list reports every file.
func WithExtensions(exts []string) Option {
	return func(w *Watcher) {
		w.extensions = exts
	}
}

// New creates a watcher over root. Call Run to start watching.
func New(root string, onChange ChangeFunc, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s: not a directory", root)
	}
	if onChange == nil {
		return nil, errors.New("watch: change callback is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		onChange: onChange,
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, then releases the watcher.
// The change callback runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)
			logger.Info("watch: %d file(s) changed under %s", len(paths), w.root)
			w.onChange(ctx, paths)
		}
	}
}

// handle reports whether the event is a relevant change. New directories
// are added to the watch set.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if hidden(event.Name) {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("watch: %v", err)
			}
			// A directory moved in with files already inside it is a change.
			return true
		}
	}

	return w.matches(event.Name)
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// addTree adds dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		logger.Debug("watch: added %s", path)
		return nil
	})
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
