package images

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_InvalidatesChangedIcon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icons", "audio-volume-high.png")
	writePNG(t, path, 4, 4, color.White)

	l := newTestLoader(WithSearchDirs(dir), WithCacheSize(4))
	if img := l.Load(path, LoadOptions{}); !img.Success {
		t.Fatalf("expected initial load to succeed")
	}
	if l.CachedSurfaces() != 1 {
		t.Fatalf("expected one cached surface")
	}

	w, err := NewWatcher(l)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	writePNG(t, path, 8, 8, color.White)

	deadline := time.Now().Add(5 * time.Second)
	for l.CachedSurfaces() != 0 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("timed out waiting for cache invalidation")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop after cancel")
	}
}

func TestNewWatcher_RequiresSearchDirs(t *testing.T) {
	_, err := NewWatcher(newTestLoader())
	if !errors.Is(err, ErrNoSearchDirs) {
		t.Fatalf("expected ErrNoSearchDirs, got %v", err)
	}
}

func TestWatcher_OnChangeReportsNewFile(t *testing.T) {
	dir := t.TempDir()
	l := newTestLoader(WithSearchDirs(dir))

	w, err := NewWatcher(l)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	changed := make(chan string, 8)
	w.OnChange = func(path string) {
		select {
		case changed <- path:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	path := filepath.Join(dir, "battery.png")
	writePNG(t, path, 2, 2, color.White)

	select {
	case got := <-changed:
		if got != path {
			t.Fatalf("expected change for %s, got %s", path, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for change notification")
	}
}
