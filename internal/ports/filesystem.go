// Package ports defines interfaces (contracts) for external dependencies.
// These enable dependency injection and testability via mock implementations.
package ports

import (
	"os"
)

// FileSystem abstracts filesystem operations for testability.
// Production code uses OSFileSystem adapter; tests use MockFileSystem.
type FileSystem interface {
	// ReadDir reads the named directory and returns directory entries.
	ReadDir(name string) ([]os.DirEntry, error)

	// Stat returns file info for the named file.
	Stat(name string) (os.FileInfo, error)

	// Lstat returns file info for the named file without following symlinks.
	Lstat(name string) (os.FileInfo, error)

	// Mkdir creates a single directory. It fails if the path already exists.
	Mkdir(path string, perm os.FileMode) error

	// Remove removes the named file or empty directory.
	Remove(name string) error

	// RemoveAll removes path and any children it contains.
	RemoveAll(path string) error

	// Rename renames (moves) oldpath to newpath.
	Rename(oldpath, newpath string) error

	// CopyAll copies src to dst, recursing into directories and keeping
	// permission bits, modification times and symlinks. dst must not exist.
	CopyAll(src, dst string) error
}
