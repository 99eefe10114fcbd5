package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFiles_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "current.xml")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("<api/>"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runs := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Files(ctx, []string{target}, 20*time.Millisecond, func() error {
			runs <- struct{}{}
			return nil
		}, nil)
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(other, []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-runs:
		t.Fatalf("unrelated file triggered a run")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(target, []byte("<api></api>"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatalf("change did not trigger a run")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Files: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}

func TestFiles_ErrorStopsUnlessHandled(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "v1.xml")
	if err := os.WriteFile(target, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- Files(context.Background(), []string{target}, 10*time.Millisecond, func() error { return boom }, nil)
	}()
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(target, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("Files error = %v, want boom", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("error did not stop the watcher")
	}
}

func TestFiles_NothingToWatch(t *testing.T) {
	if err := Files(context.Background(), nil, 0, func() error { return nil }, nil); err == nil {
		t.Fatalf("empty path list must fail")
	}
}
