package images

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates a loader's cached surfaces when files under its
// search directories change.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher

	// OnChange, when set, is called from Run after a file below the search
	// directories changed and its cached surfaces were dropped.
	OnChange func(path string)
}

// NewWatcher starts watching every directory below the loader's search
// directories. Directories that do not exist are skipped.
func NewWatcher(l *Loader) (*Watcher, error) {
	if len(l.dirs) == 0 {
		return nil, ErrNoSearchDirs
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{loader: l, watcher: fw}
	for _, dir := range l.dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.loader.logger.Warn("Icon watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.loader.logger.Warn("Failed to watch new icon directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Create) {
		if n := w.loader.InvalidatePath(ev.Name); n > 0 {
			w.loader.logger.Debug("Invalidated cached icon", "path", ev.Name, "entries", n)
		}
		if w.OnChange != nil {
			w.OnChange(ev.Name)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
