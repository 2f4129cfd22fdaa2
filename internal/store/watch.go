package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// watchCoalesceWindow batches the write+rename bursts editors and our own
// atomic saves produce into a single reload callback.
const watchCoalesceWindow = 250 * time.Millisecond

// Watcher reloads callers when the settings file changes on disk (external
// edits, sync tools). Events are coalesced so one logical change triggers one
// callback.
type Watcher struct {
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Watch observes path until ctx is done or Close is called. onChange runs on
// the watcher goroutine after the coalesce window; it must hand any UI work
// to the UI loop itself.
func Watch(ctx context.Context, path string, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watch %s: onChange callback is required", path)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	// Watch the directory, not the file: atomic saves replace the file via
	// rename and a file-level watch would go stale after the first save.
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		closeErr := fsw.Close()
		if closeErr != nil {
			slog.Warn("[store] watcher close after failed add", "error", closeErr)
		}
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{fsw: fsw, cancel: cancel, done: make(chan struct{})}

	target := filepath.Clean(path)
	debounced := debounce.New(watchCoalesceWindow)

	go func() {
		defer close(w.done)
		for {
			select {
			case <-wctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				slog.Debug("[store] settings file changed on disk", "op", event.Op.String())
				debounced(onChange)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				slog.Warn("[store] settings watcher error", "error", err)
			}
		}
	}()

	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.cancel()
	err := w.fsw.Close()
	<-w.done
	return err
}
