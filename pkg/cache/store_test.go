package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestOnceProducesAbsentPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "file.svg")

	s := NewStore()
	err := s.Once(path, func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		return os.WriteFile(path, []byte("produced"), 0644)
	})
	if err != nil {
		t.Fatalf("Once error: %v", err)
	}
	if !s.Exists(path) {
		t.Fatal("path should exist after production")
	}
}

func TestOnceSkipsExistingPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.svg")
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore()
	called := false
	if err := s.Once(path, func() error {
		called = true
		return os.WriteFile(path, []byte("clobbered"), 0644)
	}); err != nil {
		t.Fatalf("Once error: %v", err)
	}

	if called {
		t.Error("producer must not run for an existing path")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "original" {
		t.Errorf("existing content changed: %q", data)
	}
}

func TestOncePropagatesProducerError(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "never.svg")
	wantErr := os.ErrPermission
	if err := s.Once(path, func() error { return wantErr }); err != wantErr {
		t.Errorf("Once error = %v, want %v", err, wantErr)
	}
	// A failed production leaves the path absent, so a retry runs again.
	ran := false
	_ = s.Once(path, func() error { ran = true; return nil })
	if !ran {
		t.Error("producer should run again after a failed attempt")
	}
}

func TestOnceSerializesConcurrentProducers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.svg")

	s := NewStore()
	var produced int
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Once(path, func() error {
				produced++
				return os.WriteFile(path, []byte("x"), 0644)
			})
		}()
	}
	wg.Wait()

	// Producers are serialized per path and later ones see the file present,
	// so exactly one production happens. No race on the counter either.
	if produced != 1 {
		t.Errorf("produced %d times, want 1", produced)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "HEAD", "pcb")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.svg", "b.svg"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	count, err := Clear(dir)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if count != 2 {
		t.Errorf("Clear removed %d files, want 2", count)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("the root directory itself should survive")
	}
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); !os.IsNotExist(err) {
		t.Error("emptied subdirectories should be pruned")
	}
}

func TestClearPrunesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	deep := filepath.Join(dir, "WORK", "sch", "sub")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deep, "top.svg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	count, err := Clear(dir)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if count != 1 {
		t.Errorf("Clear removed %d files, want 1", count)
	}

	// Every level of the emptied tree goes away, not only the deepest one.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directories left behind after Clear: %v", entries)
	}
}

func TestClearMissingDir(t *testing.T) {
	count, err := Clear(filepath.Join(t.TempDir(), "nope"))
	if err != nil || count != 0 {
		t.Errorf("Clear on a missing dir = (%d, %v), want (0, nil)", count, err)
	}
}
