package index

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docmatch/internal/logger"
)

// Watcher calls a function whenever either index file changes on disk,
// including changes made by another process.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	onChange  func()
	stopCh    chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// Watch starts watching dir. The callback runs on the watcher goroutine.
func Watch(ctx context.Context, dir string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if relevant(event) {
				logger.Debug("index file changed: %s %s", event.Op, filepath.Base(event.Name))
				w.onChange()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("index watcher: %v", err)
		}
	}
}

// relevant filters out temporary files, the lock file and chmod events.
func relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == event.Op {
		return false
	}
	switch filepath.Base(event.Name) {
	case VectorsFile, ChunksFile:
		return true
	default:
		return false
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fsWatcher.Close()
		<-w.done
	})
	return err
}
