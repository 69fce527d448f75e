package reconcile

import (
	"path/filepath"
	"strings"
)

// DefaultSuffixes are the archive suffixes stripped when naming the container
// directory. Compound suffixes win over their last component.
var DefaultSuffixes = []string{
	".tar", ".tar.gz", ".tgz", ".taz", ".tar.bz2", ".tbz", ".tbz2", ".tb2",
	".tar.xz", ".txz", ".tar.zst", ".tzst", ".tar.lz4", ".tlz4", ".tar.br",
	".tar.sz", ".tar.lz", ".tar.lzma", ".tlz", ".tar.z",
	".zip", ".jar", ".war", ".cbz", ".7z", ".rar", ".cbr",
}

// ContainerName returns the directory name an archive's roots are gathered
// into: the archive's base name without the longest matching suffix (case
// insensitive). When no suffix matches, the last extension is stripped unless
// that would leave nothing.
func ContainerName(archivePath string, suffixes []string) string {
	if suffixes == nil {
		suffixes = DefaultSuffixes
	}
	base := filepath.Base(archivePath)

	longest := 0
	for _, s := range suffixes {
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		if len(s) < len(base) && len(s) > longest && strings.EqualFold(base[len(base)-len(s):], s) {
			longest = len(s)
		}
	}
	if longest > 0 {
		return base[:len(base)-longest]
	}

	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
