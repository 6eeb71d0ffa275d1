package preview

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls OnChange after the watched file has been written, created or
// renamed, once the changes have settled for the debounce period.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
	log      *slog.Logger
}

// NewWatcher watches the directory of path, which is more reliable than
// watching the file itself when editors replace it on save.
func NewWatcher(path string, debounce time.Duration, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}
	return &Watcher{
		path:     absPath,
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		log:      logger,
	}, nil
}

// Run delivers debounced change notifications until ctx is cancelled. The
// underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.log.Info("watching for changes", "source", w.path, "debounce", w.debounce)

	name := filepath.Base(w.path)
	var settle <-chan time.Time // nil while no change is pending

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				if event.Has(fsnotify.Remove) {
					w.log.Warn("source removed", "source", event.Name)
				}
				continue
			}
			w.log.Debug("source change detected", "source", event.Name, "op", event.Op.String())
			settle = time.After(w.debounce)
		case <-settle:
			settle = nil
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}
