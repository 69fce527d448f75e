// Package mocks provides mock implementations for testing.
package mocks

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/mcdonaldj/debomb/internal/ports"
)

// MockFileSystem implements ports.FileSystem for testing.
// It keeps an in-memory tree of files and directories keyed by cleaned path.
type MockFileSystem struct {
	// Stats maps paths to FileInfo; every existing file and directory has an entry
	Stats map[string]os.FileInfo
	// Errors maps paths to errors returned by any operation on that path
	Errors map[string]error
	// RenameErrors maps source paths to errors returned only by Rename
	RenameErrors map[string]error
	// CopyErrors maps source paths to errors returned by CopyAll after it
	// has already created the destination, simulating an interrupted copy
	CopyErrors map[string]error
	// RemoveErrors maps paths to errors returned only by Remove and RemoveAll
	RemoveErrors map[string]error
	// Mutations records every successful mutating call, e.g. "rename /a /b"
	Mutations []string
}

// NewMockFileSystem creates a new mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Stats:        make(map[string]os.FileInfo),
		Errors:       make(map[string]error),
		RenameErrors: make(map[string]error),
		CopyErrors:   make(map[string]error),
		RemoveErrors: make(map[string]error),
	}
}

// AddDir marks path and all of its parents as directories.
func (m *MockFileSystem) AddDir(path string) {
	path = filepath.Clean(path)
	for p := path; ; p = filepath.Dir(p) {
		if _, ok := m.Stats[p]; !ok {
			m.Stats[p] = &mockFileInfo{name: filepath.Base(p), isDir: true}
		}
		if filepath.Dir(p) == p {
			return
		}
	}
}

// AddFile marks path as a regular file and its parents as directories.
func (m *MockFileSystem) AddFile(path string) {
	path = filepath.Clean(path)
	m.AddDir(filepath.Dir(path))
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path)}
}

// Exists reports whether path is present in the tree.
func (m *MockFileSystem) Exists(path string) bool {
	_, ok := m.Stats[filepath.Clean(path)]
	return ok
}

// ReadDir reads the named directory and returns directory entries sorted by name.
func (m *MockFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	name = filepath.Clean(name)
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	info, ok := m.Stats[name]
	if !ok {
		return nil, &os.PathError{Op: "readdir", Path: name, Err: os.ErrNotExist}
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "readdir", Path: name, Err: syscall.ENOTDIR}
	}

	var entries []os.DirEntry
	for p, child := range m.Stats {
		if p != name && filepath.Dir(p) == name {
			entries = append(entries, fs.FileInfoToDirEntry(child))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Stat returns file info for the named file.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	name = filepath.Clean(name)
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if info, ok := m.Stats[name]; ok {
		return info, nil
	}
	return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
}

// Lstat behaves like Stat; the mock has no symlinks.
func (m *MockFileSystem) Lstat(name string) (os.FileInfo, error) {
	return m.Stat(name)
}

// Mkdir creates a single directory.
func (m *MockFileSystem) Mkdir(path string, perm os.FileMode) error {
	path = filepath.Clean(path)
	if err, ok := m.Errors[path]; ok {
		return err
	}
	if _, ok := m.Stats[path]; ok {
		return &os.PathError{Op: "mkdir", Path: path, Err: os.ErrExist}
	}
	if parent, ok := m.Stats[filepath.Dir(path)]; !ok || !parent.IsDir() {
		return &os.PathError{Op: "mkdir", Path: path, Err: os.ErrNotExist}
	}
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), isDir: true, mode: perm}
	m.Mutations = append(m.Mutations, "mkdir "+path)
	return nil
}

// Remove removes the named file or empty directory.
func (m *MockFileSystem) Remove(name string) error {
	name = filepath.Clean(name)
	if err, ok := m.Errors[name]; ok {
		return err
	}
	if err, ok := m.RemoveErrors[name]; ok {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	if _, ok := m.Stats[name]; !ok {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrNotExist}
	}
	for p := range m.Stats {
		if strings.HasPrefix(p, name+string(filepath.Separator)) {
			return &os.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
		}
	}
	delete(m.Stats, name)
	m.Mutations = append(m.Mutations, "remove "+name)
	return nil
}

// RemoveAll removes path and any children it contains.
func (m *MockFileSystem) RemoveAll(path string) error {
	path = filepath.Clean(path)
	if err, ok := m.Errors[path]; ok {
		return err
	}
	if err, ok := m.RemoveErrors[path]; ok {
		return &os.PathError{Op: "unlinkat", Path: path, Err: err}
	}
	for _, p := range m.subtree(path) {
		delete(m.Stats, p)
	}
	m.Mutations = append(m.Mutations, "removeall "+path)
	return nil
}

// Rename renames (moves) oldpath to newpath, carrying its subtree along.
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	if err, ok := m.Errors[oldpath]; ok {
		return err
	}
	if err, ok := m.RenameErrors[oldpath]; ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}
	if _, ok := m.Stats[oldpath]; !ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrNotExist}
	}
	if _, ok := m.Stats[newpath]; ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrExist}
	}
	if _, ok := m.Stats[filepath.Dir(newpath)]; !ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrNotExist}
	}

	for _, p := range m.subtree(oldpath) {
		m.Stats[newpath+strings.TrimPrefix(p, oldpath)] = m.Stats[p]
		delete(m.Stats, p)
	}
	m.Mutations = append(m.Mutations, fmt.Sprintf("rename %s %s", oldpath, newpath))
	return nil
}

// CopyAll copies src and its subtree to dst.
func (m *MockFileSystem) CopyAll(src, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if err, ok := m.Errors[src]; ok {
		return err
	}
	if _, ok := m.Stats[src]; !ok {
		return &os.PathError{Op: "copy", Path: src, Err: os.ErrNotExist}
	}
	if _, ok := m.Stats[dst]; ok {
		return &os.PathError{Op: "copy", Path: dst, Err: os.ErrExist}
	}
	if err, ok := m.CopyErrors[src]; ok {
		m.Stats[dst] = &mockFileInfo{name: filepath.Base(dst), isDir: m.Stats[src].IsDir()}
		m.Mutations = append(m.Mutations, fmt.Sprintf("copy %s %s (interrupted)", src, dst))
		return err
	}

	for _, p := range m.subtree(src) {
		m.Stats[dst+strings.TrimPrefix(p, src)] = m.Stats[p]
	}
	m.Mutations = append(m.Mutations, fmt.Sprintf("copy %s %s", src, dst))
	return nil
}

// subtree returns path and every path below it.
func (m *MockFileSystem) subtree(path string) []string {
	var paths []string
	for p := range m.Stats {
		if p == path || strings.HasPrefix(p, path+string(filepath.Separator)) {
			paths = append(paths, p)
		}
	}
	return paths
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *mockFileInfo) Name() string { return fi.name }
func (fi *mockFileInfo) Size() int64  { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode {
	if fi.isDir {
		return fi.mode.Perm() | os.ModeDir
	}
	return fi.mode.Perm()
}
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// ErrCrossDevice is the error a rename across filesystems fails with.
var ErrCrossDevice error = syscall.EXDEV

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
