// Package fib implements C4 (the linearizer) and C5 (the zone resolver): it
// turns a coalesced, disjoint prefix set into a flat, sorted sequence of
// address-line breakpoints, and answers zone-set lookups against it by
// interval search.
//
// The breakpoint/compression scheme is ported directly from
// original_source/firewall_autozoner.py's populate_linearized_fib (the
// fib_list / fib_list_compressed construction) and zone_finder. The ordered,
// binary-searchable slice representation mirrors the sorted-key-order
// lookup discipline the teacher built around LevelDB's iterator in
// pkg/iporgdb/lookup.go (GetByIP's seek/prev logic), adapted here to an
// in-memory slice searched with sort.Search instead of a disk iterator.
package fib

import (
	"sort"

	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/coalesce"
	"fwzoner/pkg/zoneset"
)

// Entry is one address-line breakpoint.
type Entry struct {
	Addr  *addrspace.Int
	Zones zoneset.Set
}

// FIB is the linearized forwarding table for a single address family.
type FIB struct {
	Family addrspace.Family
	Entries []Entry

	// TotalZones is the union of every zone appearing in Entries, including
	// NULL_ROUTE if present. TotalZonesStripped excludes it. Both are
	// exposed because the glue layer needs the stripped variant to detect
	// the "every zone" condition while still being able to preserve
	// NULL_ROUTE on request (spec.md §9 open question).
	TotalZones         zoneset.Set
	TotalZonesStripped zoneset.Set
}

type sortablePrefix struct {
	first *addrspace.Int
	last  *addrspace.Int
	zones zoneset.Set
}

// Build converts a coalesced, disjoint prefix set into a linearized FIB.
func Build(family addrspace.Family, disjoint coalesce.Disjoint) *FIB {
	sorted := make([]sortablePrefix, 0, len(disjoint))
	for p, z := range disjoint {
		sorted = append(sorted, sortablePrefix{
			first: addrspace.FirstAddr(p),
			last:  addrspace.LastAddr(p),
			zones: z,
		})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].first.Cmp(sorted[j].first) < 0
	})

	// Step 2: emit raw breakpoints (start, and end if different from start).
	var raw []Entry
	for _, sp := range sorted {
		raw = append(raw, Entry{Addr: sp.first, Zones: sp.zones})
		if sp.last.Cmp(sp.first) != 0 {
			raw = append(raw, Entry{Addr: sp.last, Zones: sp.zones})
		}
	}

	entries := compress(raw)

	allZones := zoneset.Set{}
	for _, e := range entries {
		allZones = allZones.Union(e.Zones)
	}

	return &FIB{
		Family:             family,
		Entries:            entries,
		TotalZones:         allZones,
		TotalZonesStripped: allZones.Without(zoneset.NullRoute),
	}
}

// compress keeps only transition points plus the end-of-run marker right
// before each transition, so at most two consecutive entries ever share a
// zone set (spec.md §4.4, §8 invariant 6).
func compress(raw []Entry) []Entry {
	if len(raw) == 0 {
		return nil
	}
	var kept []Entry
	var prevZones zoneset.Set
	for idx, point := range raw {
		if !point.Zones.Equal(prevZones) {
			if len(kept) >= 2 && !sameEntry(kept[len(kept)-1], raw[idx-1]) {
				kept = append(kept, raw[idx-1])
			}
			kept = append(kept, point)
			prevZones = point.Zones
		}
	}
	last := raw[len(raw)-1]
	if len(kept) == 0 || !sameEntry(kept[len(kept)-1], last) {
		kept = append(kept, last)
	}
	return kept
}

func sameEntry(a, b Entry) bool {
	return a.Addr.Cmp(b.Addr) == 0 && a.Zones.Equal(b.Zones)
}
