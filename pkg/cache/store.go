// Package cache provides the extraction memoization store for the scratch
// directory.
//
// Every materialized file (an extracted design file or a rendered SVG
// artifact) lives at a deterministic path under the scratch directory and is
// produced at most once: a path that already exists on disk is treated as
// satisfied. The store makes that contract explicit and safe under
// concurrent requests by serializing producers per destination path, so two
// requests for the same not-yet-materialized file share one extraction
// instead of racing on file creation.
package cache

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Store memoizes filesystem side effects keyed by destination path.
// The zero value is not usable; construct with NewStore.
type Store struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex guarding path, creating it on first use.
// Paths are cleaned so spelling variants of the same destination share a key.
func (s *Store) lockFor(path string) *sync.Mutex {
	key := filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Once produces the file at path by running produce, unless the path already
// exists. Producers for the same path are strictly serialized: a concurrent
// caller blocks until the first producer finishes and then observes its
// output as already present.
//
// The existence check deliberately does not validate content; a present path
// is trusted regardless of which identifier first produced it.
func (s *Store) Once(path string, produce func() error) error {
	l := s.lockFor(path)
	l.Lock()
	defer l.Unlock()

	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return produce()
}

// Exists reports whether path has already been materialized.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Clear removes every file below dir, then prunes the emptied
// subdirectories. It returns the number of files removed. Missing
// directories are not an error.
func Clear(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	var subdirs []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if info.IsDir() {
			subdirs = append(subdirs, path)
			return nil
		}
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	// A child sorts after its parent, so reverse order removes the deepest
	// directories first and parents are empty by the time they are reached.
	slices.Sort(subdirs)
	slices.Reverse(subdirs)
	for _, sub := range subdirs {
		os.Remove(sub)
	}
	return count, nil
}
