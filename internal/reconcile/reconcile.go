// Package reconcile compares an archive's members with a directory and
// gathers exploded members into a directory named after the archive.
package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/mcdonaldj/debomb/internal/adapters/osfs"
	"github.com/mcdonaldj/debomb/internal/members"
	"github.com/mcdonaldj/debomb/internal/ports"
)

// ConsolidateOptions configures a consolidation.
type ConsolidateOptions struct {
	ArchivePath string
	TargetDir   string
	Members     []string
	Force       bool // Consolidate a Partial verdict
	Policy      Policy
	Suffixes    []string // nil means DefaultSuffixes

	// OnStart is called once with the number of roots about to be moved.
	OnStart func(total int)
	// OnMove is called after each root has landed in the container.
	OnMove func(root string)
}

// Result describes what a consolidation did.
type Result struct {
	Verdict Verdict

	Container        string // Path of the container directory
	CreatedContainer bool
	Moved            []string // Roots now inside the container, in move order
	Skipped          []string // Roots that were not found (forced Partial only)
	CrossDevice      []string // Roots moved by copy and delete instead of rename
}

// Service provides reconciliation operations with injected dependencies.
type Service struct {
	fs     ports.FileSystem
	logger *log.Logger
}

// NewService creates a new reconcile service with the given dependencies.
func NewService(fs ports.FileSystem, logger *log.Logger) *Service {
	return &Service{
		fs:     fs,
		logger: logger,
	}
}

// NewDefaultService creates a reconcile service with real production dependencies.
func NewDefaultService(logger *log.Logger) *Service {
	return NewService(osfs.New(), logger)
}

// Inspect snapshots targetDir once and classifies names against it.
func (s *Service) Inspect(targetDir string, names []string, policy Policy) (Verdict, error) {
	dirEntries, err := s.fs.ReadDir(targetDir)
	if err != nil {
		return Verdict{}, fmt.Errorf("reading directory %s: %w", targetDir, err)
	}

	entries := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		entries = append(entries, e.Name())
	}

	if policy != MatchExact {
		return Classify(names, entries), nil
	}

	listing := make(map[string]bool, len(entries))
	for _, e := range entries {
		listing[e] = true
	}

	// Members whose root is not a directory entry are absent without a
	// lookup. Raw members that are not local paths (absolute, or climbing
	// out through "..") are never looked up outside targetDir.
	present := make(map[string]bool, len(names))
	for _, m := range names {
		if !listing[members.Root(m)] {
			continue
		}
		rel := filepath.FromSlash(m)
		if !filepath.IsLocal(rel) {
			s.logger.Debug("member is not a local path, treating as absent", "member", m)
			continue
		}
		if _, err := s.fs.Lstat(filepath.Join(targetDir, rel)); err == nil {
			present[m] = true
		}
	}
	return ClassifyExact(names, present), nil
}

// Consolidate moves the roots of an exploded archive into a new directory
// named after the archive. Nothing is touched unless the verdict is Exploded,
// or Partial with Force set; conflicts are detected before the first
// mutation. The first failing root stops the run: roots already moved stay in
// the container, the rest stay where they were.
func (s *Service) Consolidate(opts ConsolidateOptions) (Result, error) {
	v, err := s.Inspect(opts.TargetDir, opts.Members, opts.Policy)
	if err != nil {
		return Result{}, err
	}
	result := Result{Verdict: v}
	s.logger.Debug("classified", "dir", opts.TargetDir, "verdict", v.Kind, "roots", len(v.Roots), "present", len(v.Present))

	switch {
	case v.Kind == Clean:
		return result, ErrNothingToDo
	case v.Kind == Partial && !opts.Force:
		return result, &AmbiguousError{Verdict: v}
	}

	present := make(map[string]bool, len(v.Present))
	for _, r := range v.Present {
		present[r] = true
	}
	for _, r := range v.Roots {
		if !present[r] {
			result.Skipped = append(result.Skipped, r)
		}
	}

	name := ContainerName(opts.ArchivePath, opts.Suffixes)
	container := filepath.Join(opts.TargetDir, name)
	result.Container = container

	exists, err := s.checkContainer(container, name, v.Present)
	if err != nil {
		return result, err
	}

	if !exists {
		if err := s.fs.Mkdir(container, 0755); err != nil {
			return result, fmt.Errorf("creating %s: %w", container, err)
		}
		result.CreatedContainer = true
		s.logger.Debug("created container", "path", container)
	}

	if opts.OnStart != nil {
		opts.OnStart(len(v.Present))
	}
	for _, root := range v.Present {
		src := filepath.Join(opts.TargetDir, root)
		dst := filepath.Join(container, root)

		copied, err := s.move(src, dst)
		if err != nil {
			if result.CreatedContainer && len(result.Moved) == 0 {
				if rmErr := s.fs.Remove(container); rmErr != nil {
					s.logger.Warn("could not remove empty container", "path", container, "err", rmErr)
				} else {
					result.CreatedContainer = false
				}
			}
			return result, &MoveError{Entry: root, Err: err}
		}

		if copied {
			result.CrossDevice = append(result.CrossDevice, root)
		}
		result.Moved = append(result.Moved, root)
		s.logger.Debug("moved", "root", root, "to", dst)
		if opts.OnMove != nil {
			opts.OnMove(root)
		}
	}

	return result, nil
}

// checkContainer reports whether the container already exists and fails with
// a ConflictError when moving roots into it could overwrite anything.
func (s *Service) checkContainer(container, name string, roots []string) (bool, error) {
	for _, r := range roots {
		if r == name {
			return false, &ConflictError{Container: container, Entry: r, Reason: "is itself an archive root"}
		}
	}

	info, err := s.fs.Lstat(container)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", container, err)
	}
	if !info.IsDir() {
		return false, &ConflictError{Container: container, Reason: "exists and is not a directory"}
	}

	existing, err := s.fs.ReadDir(container)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", container, err)
	}
	inside := make(map[string]bool, len(existing))
	for _, e := range existing {
		inside[e.Name()] = true
	}
	for _, r := range roots {
		if inside[r] {
			return false, &ConflictError{Container: container, Entry: r, Reason: "already exists in the container"}
		}
	}
	return true, nil
}

// move relocates src to dst with a single rename. Across filesystems it
// falls back to copy then delete, which is not atomic; a failed copy is
// removed from dst before the error is returned.
func (s *Service) move(src, dst string) (copied bool, err error) {
	err = s.fs.Rename(src, dst)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return false, err
	}

	s.logger.Warn("rename crosses filesystems, copying instead (not atomic)", "src", src, "dst", dst)
	if err := s.fs.CopyAll(src, dst); err != nil {
		if rmErr := s.fs.RemoveAll(dst); rmErr != nil {
			return true, fmt.Errorf("copying: %w (partial copy left at %s: %v)", err, dst, rmErr)
		}
		return true, fmt.Errorf("copying: %w", err)
	}

	// The copy is complete, so a failed removal leaves the root in both
	// places rather than losing any of it.
	if err := s.fs.RemoveAll(src); err != nil {
		return true, fmt.Errorf("removing source after copy: %w", err)
	}
	return true, nil
}
