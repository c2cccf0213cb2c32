package study

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchFileFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "study.yaml")
	other := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(path, []byte("name: a\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- WatchFile(ctx, path, 10*time.Millisecond, nil, func(context.Context) {
			changed <- struct{}{}
		})
	}()

	// The watch is registered asynchronously, so keep writing until it fires.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-changed:
			break loop
		case <-tick.C:
			if err := os.WriteFile(other, []byte("x"), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if err := os.WriteFile(path, []byte("name: b\n"), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
		case <-deadline:
			cancel()
			t.Fatalf("no change notification within 5s")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WatchFile returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("WatchFile did not stop after cancel")
	}
}

func TestWatchFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "study.yaml")
	err := WatchFile(context.Background(), path, 0, nil, func(context.Context) {})
	if err == nil {
		t.Fatalf("expected error watching a missing directory")
	}
}
