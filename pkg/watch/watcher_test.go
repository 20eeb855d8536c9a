package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatchCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.txt")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(context.Context) error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return errors.New("reload errors are only logged")
		})
	}()

	// The watcher may not be registered yet, so keep touching the file
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(5 * time.Second)

	// A sibling file must not trigger a reload
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

wait:
	for {
		select {
		case <-changed:
			break wait
		case <-ticker.C:
			if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("onChange was not called")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not stop after cancel")
	}
}

func TestReloadDoesNotOverlap(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "questions.txt"), 0)
	if err != nil {
		t.Fatal(err)
	}

	var running, maxRunning, calls atomic.Int32
	onChange := func(context.Context) error {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		calls.Add(1)
		return nil
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.reload(context.Background(), onChange)
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 5 {
		t.Errorf("onChange calls = %d, want 5", got)
	}
	if got := maxRunning.Load(); got != 1 {
		t.Errorf("concurrent onChange calls = %d, want 1", got)
	}
}

func TestReloadSkipsAfterCancel(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "questions.txt"), 0)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.reload(ctx, func(context.Context) error {
		t.Error("onChange should not run after cancel")
		return nil
	})
}

func TestRelevant(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "questions.txt"), 0)
	if err != nil {
		t.Fatal(err)
	}

	if w.relevant(fsnotify.Event{Name: filepath.Join(filepath.Dir(w.path), "other.txt"), Op: fsnotify.Write}) {
		t.Error("events for other files should be ignored")
	}
	if !w.relevant(fsnotify.Event{Name: w.path, Op: fsnotify.Write}) {
		t.Error("writes to the watched file should be relevant")
	}
}

func TestRelevantOps(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "questions.txt"), 0)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		op   fsnotify.Op
		want bool
	}{
		{fsnotify.Write, true},
		{fsnotify.Create, true},
		{fsnotify.Rename, true},
		{fsnotify.Chmod, false},
		{fsnotify.Remove, false},
	}
	for _, tt := range tests {
		if got := w.relevant(fsnotify.Event{Name: w.path, Op: tt.op}); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}
