// Package zoneset implements the interface/security-zone label set used
// throughout the forwarding core: an unordered, deduplicated collection of
// opaque zone strings.
package zoneset

import "sort"

// NullRoute is the reserved internal token marking address space with no
// configured route. It is never a real zone label; glue code must reject
// any RIB or policy input that contains it literally (see the fwzoner CLI).
const NullRoute = "####NULL_ROUTED####"

// Set is a small sorted, deduplicated collection of zone labels. A slice is
// used rather than a map because most policies resolve to one or a handful
// of zones; sorting gives deterministic String()/equality without needing a
// second data structure.
type Set []string

// New builds a Set from the given labels, deduplicating and sorting them.
func New(labels ...string) Set {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(labels))
	out := make(Set, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Union returns the set union of s and other, deduplicated and sorted.
func (s Set) Union(other Set) Set {
	if len(s) == 0 {
		return New(other...)
	}
	if len(other) == 0 {
		return New(s...)
	}
	combined := make([]string, 0, len(s)+len(other))
	combined = append(combined, s...)
	combined = append(combined, other...)
	return New(combined...)
}

// Add returns a new Set with label inserted (a no-op if already present).
func (s Set) Add(label string) Set {
	return s.Union(Set{label})
}

// Contains reports whether label is a member of s.
func (s Set) Contains(label string) bool {
	for _, l := range s {
		if l == label {
			return true
		}
	}
	return false
}

// Without returns a copy of s with label removed; if label is not a
// member, s itself is returned.
func (s Set) Without(label string) Set {
	if !s.Contains(label) {
		return s
	}
	out := make(Set, 0, len(s))
	for _, l := range s {
		if l != label {
			out = append(out, l)
		}
	}
	return out
}

// Equal reports whether s and other contain exactly the same labels.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Len is the number of distinct zone labels, regardless of NullRoute.
func (s Set) Len() int {
	return len(s)
}
