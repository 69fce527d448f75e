package members

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "plain file", raw: "a.jpg", expected: "a.jpg"},
		{name: "nested file", raw: "sub/c.jpg", expected: "sub/c.jpg"},
		{name: "directory header", raw: "sub/", expected: "sub"},
		{name: "dot slash prefix", raw: "./a.jpg", expected: "a.jpg"},
		{name: "tar root entry", raw: "./", expected: ""},
		{name: "absolute path", raw: "/etc/passwd", expected: "etc/passwd"},
		{name: "many leading slashes", raw: "///var/log", expected: "var/log"},
		{name: "parent escape", raw: "../../etc/passwd", expected: "etc/passwd"},
		{name: "absolute then parent", raw: "/../x", expected: "x"},
		{name: "inner escape", raw: "a/../../b", expected: "b"},
		{name: "inner parent stays inside", raw: "a/b/../c", expected: "a/c"},
		{name: "only parents", raw: "../..", expected: ""},
		{name: "only slash", raw: "/", expected: ""},
		{name: "dots in filename allowed", raw: "file..txt", expected: "file..txt"},
		{name: "dotdot prefixed name", raw: "..hidden", expected: "..hidden"},
		{name: "empty", raw: "", expected: ""},
		{name: "leading backslash", raw: `\evil\x.txt`, expected: `evil\x.txt`},
		{name: "mixed leading separators", raw: `/\/a`, expected: "a"},
		{name: "backslash after parent", raw: `../\x`, expected: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw, false); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestNormalizeAbsoluteNamesKeepsRaw(t *testing.T) {
	for _, raw := range []string{"/etc/passwd", "../x", "./a", "sub/"} {
		if got := Normalize(raw, true); got != raw {
			t.Errorf("Normalize(%q, true) = %q, expected raw path", raw, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"a.jpg", "sub/c.jpg", "/etc/passwd", "../../x/y", "./a/./b", "a/../../b", "dir/",
		`\evil\x.txt`, `../\x`, `..\x`,
	}
	for _, in := range inputs {
		once := Normalize(in, false)
		if twice := Normalize(once, false); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeNeverEscapes(t *testing.T) {
	base := "/home/user/dest"
	inputs := []string{
		"../../../etc/passwd", "/etc/shadow", "a/../../../b", "..", "../", "/..",
		"x/y/../../../../z", "./../a", "//../..//b",
	}

	for _, in := range inputs {
		out := Normalize(in, false)
		target := filepath.Clean(filepath.Join(base, out))
		if target != base && !strings.HasPrefix(target, base+string(filepath.Separator)) {
			t.Errorf("Normalize(%q) = %q escapes %s (resolves to %s)", in, out, base, target)
		}
		if strings.HasPrefix(out, "/") || out == ".." || strings.HasPrefix(out, "../") {
			t.Errorf("Normalize(%q) = %q is not relative", in, out)
		}
	}
}

func TestRoot(t *testing.T) {
	tests := []struct {
		member   string
		expected string
	}{
		{"a.jpg", "a.jpg"},
		{"sub/c.jpg", "sub"},
		{"sub/", "sub"},
		{"deep/er/path.txt", "deep"},
		{"/etc/passwd", "/etc"},
		{"/top", "/top"},
		{"../x", ".."},
	}

	for _, tt := range tests {
		if got := Root(tt.member); got != tt.expected {
			t.Errorf("Root(%q) = %q, expected %q", tt.member, got, tt.expected)
		}
	}
}
