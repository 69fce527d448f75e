package reconcile

import (
	"fmt"

	"github.com/mcdonaldj/debomb/internal/members"
)

// Kind is the outcome of comparing an archive with a directory.
type Kind int

const (
	// Clean means none of the archive's members were found.
	Clean Kind = iota
	// Exploded means every member was found loose in the directory.
	Exploded
	// Partial means some members were found and some were not.
	Partial
)

func (k Kind) String() string {
	switch k {
	case Clean:
		return "clean"
	case Exploded:
		return "exploded"
	case Partial:
		return "partial"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Policy selects how members are matched against the directory.
type Policy int

const (
	// MatchRoot treats a member as present when its top-level root is a
	// directory entry.
	MatchRoot Policy = iota
	// MatchExact treats a member as present only when its full path exists.
	MatchExact
)

func (p Policy) String() string {
	if p == MatchExact {
		return "exact"
	}
	return "root"
}

// ParsePolicy parses "root" or "exact". The empty string means MatchRoot.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "root":
		return MatchRoot, nil
	case "exact":
		return MatchExact, nil
	default:
		return MatchRoot, fmt.Errorf("unknown match policy %q (want root or exact)", s)
	}
}

// Verdict is the classification of one archive against one directory snapshot.
type Verdict struct {
	Kind Kind

	// Roots are the distinct top-level roots of the members, in archive order.
	Roots []string
	// Present are the roots found in the directory, in archive order.
	// These are the units a consolidation relocates.
	Present []string
	// Missing holds the members that were not found. Only set for Partial.
	Missing []string
}

// Classify compares member paths with the names of a directory's direct
// children using the root-containment policy.
func Classify(names []string, entries []string) Verdict {
	listing := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		listing[e] = struct{}{}
	}

	return classify(names, func(member, root string) bool {
		_, ok := listing[root]
		return ok
	})
}

// ClassifyExact classifies member paths using the exact-path policy. present
// reports, per member, whether that path existed when the directory was
// snapshotted.
func ClassifyExact(names []string, present map[string]bool) Verdict {
	return classify(names, func(member, _ string) bool {
		return present[member]
	})
}

func classify(list []string, found func(member, root string) bool) Verdict {
	var v Verdict
	seenRoot := make(map[string]bool)
	presentRoot := make(map[string]bool)
	seenMember := make(map[string]bool)
	var missing []string
	total, hits := 0, 0

	for _, m := range list {
		if m == "" || seenMember[m] {
			continue
		}
		seenMember[m] = true
		total++

		root := members.Root(m)
		if !seenRoot[root] {
			seenRoot[root] = true
			v.Roots = append(v.Roots, root)
		}

		if found(m, root) {
			hits++
			if !presentRoot[root] {
				presentRoot[root] = true
				v.Present = append(v.Present, root)
			}
		} else {
			missing = append(missing, m)
		}
	}

	switch {
	case total == 0 || hits == 0:
		v.Kind = Clean
		v.Present = nil
	case hits == total:
		v.Kind = Exploded
	default:
		v.Kind = Partial
		v.Missing = missing
	}
	return v
}
