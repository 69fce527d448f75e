package members

import (
	"path"
	"strings"
)

// Normalize maps a raw archive header path to the relative path it would be
// extracted to. Leading separators (both "/" and "\") are stripped, the
// path is cleaned lexically and any leading ".." segments are dropped, so the
// result never escapes the extraction directory. An empty result means the
// header names the extraction directory itself (tar's "./" entry, for example).
//
// With absoluteNames set the raw path is returned unmodified.
func Normalize(raw string, absoluteNames bool) string {
	if absoluteNames {
		return raw
	}

	p := raw
	for {
		p = strings.TrimLeft(p, `/\`)
		if p == "" {
			return ""
		}
		p = path.Clean(p)
		for p == ".." || strings.HasPrefix(p, "../") {
			p = strings.TrimPrefix(strings.TrimPrefix(p, ".."), "/")
		}
		// Dropping ".." can expose another leading separator.
		if !strings.HasPrefix(p, `\`) && !strings.HasPrefix(p, "/") {
			break
		}
	}
	if p == "." {
		return ""
	}
	return p
}

// Root returns the top-level path segment of a member: the text before the
// first separator, or the whole member when there is none. A trailing
// separator (directory headers) is ignored. For raw absolute members the
// leading separator is kept, so "/etc/passwd" has root "/etc".
func Root(member string) string {
	m := strings.TrimSuffix(member, "/")
	start := 0
	if strings.HasPrefix(m, "/") {
		start = 1
	}
	if i := strings.Index(m[start:], "/"); i >= 0 {
		return m[:start+i]
	}
	return m
}
