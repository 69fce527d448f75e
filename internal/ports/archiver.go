package ports

import (
	"context"
	"errors"
)

var (
	// ErrArchiveUnreadable is returned when the archive file cannot be opened.
	ErrArchiveUnreadable = errors.New("archive unreadable")

	// ErrArchiveFormatUnsupported is returned when the archive type cannot be
	// identified or its headers cannot be decoded.
	ErrArchiveFormatUnsupported = errors.New("archive format unsupported")
)

// Archiver abstracts reading archive headers for testability.
// Production code uses the archivelister adapter; tests use MockArchiver.
type Archiver interface {
	// Names returns the raw path of every header in the archive at
	// archivePath, in header order. Member content is never read.
	Names(ctx context.Context, archivePath string) ([]string, error)
}
