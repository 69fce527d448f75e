package reconcile

import "testing"

func TestContainerName(t *testing.T) {
	tests := []struct {
		archive  string
		expected string
	}{
		{"photos.tar", "photos"},
		{"/downloads/photos.tar.gz", "photos"},
		{"photos.TAR.GZ", "photos"},
		{"photos.tgz", "photos"},
		{"release-1.2.3.tar.xz", "release-1.2.3"},
		{"bundle.zip", "bundle"},
		{"notes.tar.zst", "notes"},
		{"data.backup.7z", "data.backup"},
		{"weird.gz", "weird"},
		{"noext", "noext"},
		{".tar", ".tar"},
		{".hidden", ".hidden"},
	}

	for _, tt := range tests {
		if got := ContainerName(tt.archive, nil); got != tt.expected {
			t.Errorf("ContainerName(%q) = %q, expected %q", tt.archive, got, tt.expected)
		}
	}
}

func TestContainerNameCustomSuffixes(t *testing.T) {
	suffixes := []string{"pkg.tar.zst", ".tar.zst"}

	if got := ContainerName("tool-1.0-x86_64.pkg.tar.zst", suffixes); got != "tool-1.0-x86_64" {
		t.Errorf("ContainerName = %q, expected longest custom suffix stripped", got)
	}
}
