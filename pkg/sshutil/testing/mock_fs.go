// Package testing provides SSH mock utilities for testing.
// This package simulates a remote Linux host whose /proc files live in memory.
package testing

import (
	"errors"
	"path/filepath"
	"sync"
)

// ErrNotExist is returned when reading a file that was never written.
var ErrNotExist = errors.New("no such file or directory")

// MockFS simulates the files a remote host exposes to cat.
// A file may hold a sequence of contents; each read returns the next one and
// the last one repeats. This models counters such as /proc/stat changing
// between the two reads of a two-phase command.
type MockFS struct {
	mu    sync.Mutex
	files map[string]*mockFile
}

type mockFile struct {
	versions [][]byte
	next     int
}

// NewMockFS creates a new empty mock filesystem.
func NewMockFS() *MockFS {
	return &MockFS{files: make(map[string]*mockFile)}
}

// WriteFile replaces the content of path with a single version.
func (fs *MockFS) WriteFile(path string, content []byte) error {
	return fs.WriteSequence(path, content)
}

// WriteSequence replaces the content of path with successive versions.
func (fs *MockFS) WriteSequence(path string, versions ...[]byte) error {
	if len(versions) == 0 {
		return errors.New("at least one version is required")
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[filepath.Clean(path)] = &mockFile{versions: versions}
	return nil
}

// ReadFile returns the current version of path and advances to the next.
func (fs *MockFS) ReadFile(path string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, ok := fs.files[filepath.Clean(path)]
	if !ok {
		return nil, ErrNotExist
	}
	content := f.versions[f.next]
	if f.next < len(f.versions)-1 {
		f.next++
	}
	return content, nil
}

// Exists checks if a file exists.
func (fs *MockFS) Exists(path string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.files[filepath.Clean(path)]
	return ok
}

// Remove deletes a file. Removing a missing file is not an error.
func (fs *MockFS) Remove(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, filepath.Clean(path))
}
