// Package archivelister provides an archiver adapter using github.com/mholt/archives.
package archivelister

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mholt/archives"

	"github.com/mcdonaldj/debomb/internal/ports"
)

// Lister implements ports.Archiver for every format mholt/archives can
// extract: tar (plain or compressed), zip, 7z and rar.
type Lister struct{}

// New creates a new Lister adapter.
func New() *Lister {
	return &Lister{}
}

// Names returns the raw header names of the archive in header order.
func (l *Lister) Names(ctx context.Context, archivePath string) ([]string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrArchiveUnreadable, archivePath, err)
	}
	defer func() { _ = file.Close() }()

	format, input, err := archives.Identify(ctx, archivePath, file)
	if err != nil {
		if errors.Is(err, archives.NoMatch) {
			return nil, fmt.Errorf("%w: %s", ports.ErrArchiveFormatUnsupported, archivePath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrArchiveUnreadable, archivePath, err)
	}

	// A bare compressed stream (e.g. notes.txt.gz) identifies fine but has
	// no headers to walk.
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %T cannot be listed", ports.ErrArchiveFormatUnsupported, archivePath, format)
	}

	var names []string
	handler := func(ctx context.Context, f archives.FileInfo) error {
		names = append(names, f.NameInArchive)
		return nil
	}

	if err := extractor.Extract(ctx, input, handler); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrArchiveFormatUnsupported, archivePath, err)
	}

	return names, nil
}

// Compile-time check that Lister implements ports.Archiver.
var _ ports.Archiver = (*Lister)(nil)
