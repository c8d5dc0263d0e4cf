// Package coalesce implements C3: turning an overlapping RIB into a
// disjoint prefix set with longest-prefix-match semantics preserved, by
// fragmenting supernets around the more-specific routes they contain.
//
// The algorithm is ported from
// original_source/firewall_autozoner.py's populate_linearized_fib (the
// plen-bucket fragmentation loop), expressed with the addrspace/rib/zoneset
// types instead of ipaddress objects and dicts. The teacher's own
// aggregator (pkg/iptoasn/aggregator.go) merges adjacent same-owner ranges,
// which is a different operation (no LPM override semantics); this package
// grounds the snapshot-before-mutate iteration discipline on the teacher's
// general pattern of copying a collection before mutating a structure
// being iterated over the way range.go copies iterator keys before
// deleting them.
package coalesce

import (
	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/rib"
	"fwzoner/pkg/zoneset"
)

// Disjoint is the per-family result: a mapping from Prefix to ZoneSet where
// no two keys overlap and their union covers the whole address space.
type Disjoint map[addrspace.Prefix]zoneset.Set

// Coalesce runs the fragmentation pass for a single family's Levels bucket,
// mutating it in place (levels are discarded by the caller afterwards; see
// spec.md §5 on RIB/FIB memory lifecycle) and returns the big, disjoint map.
//
// Levels are walked from the shortest prefix length upward, so each route's
// nearest remaining ancestor has already been cut away from its own
// ancestors; fragments land at lengths no longer than the route that made
// them and are never themselves processed as routes.
func Coalesce(family addrspace.Family, levels rib.Levels) Disjoint {
	maxLen := family.Bits()
	for plen := 1; plen <= maxLen; plen++ {
		supernetCache := map[int]addrspace.Prefix{}
		routes := snapshotKeys(levels[plen])
		for _, route := range routes {
			pruneStaleSupernets(supernetCache, route)
			fragmentAgainstLowerLevels(levels, route, plen, supernetCache)
		}
	}
	return mergeLevels(levels)
}

func snapshotKeys(level map[addrspace.Prefix]zoneset.Set) []addrspace.Prefix {
	out := make([]addrspace.Prefix, 0, len(level))
	for p := range level {
		out = append(out, p)
	}
	return out
}

// pruneStaleSupernets drops cached ancestor prefixes that no longer overlap
// the route currently being processed (spec.md §4.3, §9 supernet_cache).
func pruneStaleSupernets(cache map[int]addrspace.Prefix, route addrspace.Prefix) {
	for plen, supernet := range cache {
		if !addrspace.Overlaps(route, supernet) {
			delete(cache, plen)
		}
	}
}

// fragmentAgainstLowerLevels searches levels below plen for an ancestor
// supernet of route; if found, fragments that supernet around route and
// removes it, leaving route (and its siblings) disjoint at their own
// levels. Stops as soon as route is found to already be disjoint at some
// lower level (it was placed there by an earlier fragmentation).
func fragmentAgainstLowerLevels(levels rib.Levels, route addrspace.Prefix, plen int, supernetCache map[int]addrspace.Prefix) {
	for lvl := plen - 1; lvl >= 0; lvl-- {
		if _, already := levels[lvl][route]; already {
			return
		}
		for decPlen := route.Len - 1; decPlen >= lvl; decPlen-- {
			supernet, ok := supernetCache[decPlen]
			if !ok {
				supernet = addrspace.Supernet(route, decPlen)
				supernetCache[decPlen] = supernet
			}
			zones, found := levels[lvl][supernet]
			if !found {
				continue
			}
			fragments, err := addrspace.AddressExclude(supernet, route)
			if err != nil {
				// supernet genuinely contains route by construction; a
				// failure here would indicate an addrspace bug, not bad
				// input, so surface it loudly rather than silently drop
				// routes.
				panic(err)
			}
			for _, frag := range fragments {
				// A route already present at a fragment's exact prefix is
				// more specific than supernet and keeps its own zones.
				if _, exists := levels[frag.Len][frag]; !exists {
					levels[frag.Len][frag] = zones
				}
			}
			delete(levels[lvl], supernet)
			return
		}
	}
}

// mergeLevels accumulates every level, L down to 0, into one map. Because
// fragmentation already made every level disjoint from every other, no key
// collisions occur; the merge order only needs to be deterministic.
func mergeLevels(levels rib.Levels) Disjoint {
	big := Disjoint{}
	for lvl := len(levels) - 1; lvl >= 0; lvl-- {
		for p, z := range levels[lvl] {
			if _, present := big[p]; !present {
				big[p] = z
			}
		}
	}
	return big
}
