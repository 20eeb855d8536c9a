package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

// Watcher calls back when a single file changes. Bursts of events are
// collapsed into one call after the debounce interval.
type Watcher struct {
	path     string
	debounce time.Duration
	log      commonlog.Logger

	// reloadMu keeps at most one onChange call running
	reloadMu sync.Mutex
}

// New creates a watcher for the file at path
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return &Watcher{path: abs, debounce: debounce, log: commonlog.GetLogger("examjson.watch")}, nil
}

// Watch blocks until ctx is cancelled, calling onChange after the file is
// written, created or replaced. Calls never overlap; a change seen while
// one is running starts the next call after it returns. Errors from
// onChange are logged and do not stop the watcher.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files, so the directory is watched instead
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Infof("watching %s", w.path)

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	fire := func() {
		defer wg.Done()
		w.reload(ctx, onChange)
	}
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			w.log.Infof("stopped watching %s", w.path)
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugf("change detected: %s", event)

			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(w.debounce, fire)
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warningf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context, onChange func(context.Context) error) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := onChange(ctx); err != nil {
		w.log.Errorf("reload of %s failed: %v", w.path, err)
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
