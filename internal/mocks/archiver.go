package mocks

import (
	"context"
	"fmt"

	"github.com/mcdonaldj/debomb/internal/ports"
)

// MockArchiver implements ports.Archiver for testing.
type MockArchiver struct {
	// NamesResults maps archive paths to raw header names
	NamesResults map[string][]string
	// Errors maps archive paths to errors
	Errors map[string]error
	// NamesCalls records the archive path of every Names call
	NamesCalls []string
}

// NewMockArchiver creates a new mock archiver.
func NewMockArchiver() *MockArchiver {
	return &MockArchiver{
		NamesResults: make(map[string][]string),
		Errors:       make(map[string]error),
	}
}

// Names returns the configured header names for archivePath.
// Unknown archives fail as unsupported, like a file nothing can decode.
func (m *MockArchiver) Names(ctx context.Context, archivePath string) ([]string, error) {
	m.NamesCalls = append(m.NamesCalls, archivePath)
	if err, ok := m.Errors[archivePath]; ok {
		return nil, err
	}
	if names, ok := m.NamesResults[archivePath]; ok {
		return names, nil
	}
	return nil, fmt.Errorf("%w: %s", ports.ErrArchiveFormatUnsupported, archivePath)
}

// Compile-time check that MockArchiver implements ports.Archiver.
var _ ports.Archiver = (*MockArchiver)(nil)
