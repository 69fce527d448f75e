// Package members lists the entries an archive would extract, normalized to
// the paths they would occupy on disk.
package members

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mcdonaldj/debomb/internal/adapters/archivelister"
	"github.com/mcdonaldj/debomb/internal/adapters/osfs"
	"github.com/mcdonaldj/debomb/internal/ports"
)

var (
	// ErrArchiveUnreadable is returned when the archive is missing, is not a
	// regular file, or cannot be opened.
	ErrArchiveUnreadable = ports.ErrArchiveUnreadable

	// ErrArchiveFormatUnsupported is returned when the archive type cannot be
	// identified or its headers cannot be decoded.
	ErrArchiveFormatUnsupported = ports.ErrArchiveFormatUnsupported
)

// Lister produces the member paths of an archive.
type Lister struct {
	fs       ports.FileSystem
	archiver ports.Archiver
	logger   *log.Logger

	// AbsoluteNames disables normalization; raw header paths are returned.
	AbsoluteNames bool
}

// NewLister creates a Lister with the given dependencies.
func NewLister(fs ports.FileSystem, archiver ports.Archiver, logger *log.Logger) *Lister {
	return &Lister{
		fs:       fs,
		archiver: archiver,
		logger:   logger,
	}
}

// NewDefaultLister creates a Lister with real production dependencies.
func NewDefaultLister(logger *log.Logger) *Lister {
	return NewLister(osfs.New(), archivelister.New(), logger)
}

// List returns the normalized member paths of the archive in header order.
// Duplicate headers are reported once, at their first position.
func (l *Lister) List(ctx context.Context, archivePath string) ([]string, error) {
	info, err := l.fs.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnreadable, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrArchiveUnreadable, archivePath)
	}

	raw, err := l.archiver.Names(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		name := Normalize(r, l.AbsoluteNames)
		if name == "" {
			continue
		}
		if name != r {
			l.logger.Debug("normalized member", "raw", r, "path", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	l.logger.Debug("listed archive", "archive", archivePath, "headers", len(raw), "members", len(names))
	return names, nil
}
