package fib

import (
	"sort"

	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/zoneset"
)

// Resolve answers C5: given a prefix, return the union of
// zones any packet sourced from (or destined to) that range could be
// forwarded through.
//
// A /0 query short-circuits to the FIB's total zone set rather than walking
// the table (spec.md §4.5) — decided in DESIGN.md to return TotalZones
// (NULL_ROUTE included) rather than the stripped variant, since an
// unrouted portion of the query range is itself forwarding information the
// caller asked for.
//
// Anything narrower is located by binary search for the last breakpoint at
// or before the range's first address, then walked forward for as long as
// later breakpoints still fall at or before the range's last address —
// this is what makes Resolve correct for address ranges that straddle more
// than one coalesced fragment, not just for prefixes aligned to a single
// fragment.
func Resolve(f *FIB, p addrspace.Prefix) zoneset.Set {
	if p.Len == 0 {
		return f.TotalZones
	}
	if len(f.Entries) == 0 {
		return zoneset.New()
	}

	first := addrspace.FirstAddr(p)
	last := addrspace.LastAddr(p)

	idx := sort.Search(len(f.Entries), func(i int) bool {
		return f.Entries[i].Addr.Cmp(first) > 0
	}) - 1
	if idx < 0 {
		idx = 0
	}

	result := zoneset.New()
	for i := idx; i < len(f.Entries); i++ {
		if i > idx && f.Entries[i].Addr.Cmp(last) > 0 {
			break
		}
		result = result.Union(f.Entries[i].Zones)
	}
	return result
}
