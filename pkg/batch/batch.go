// Package batch implements C6: the per-run containment cache that
// amortizes resolver calls across a batch of address expressions by
// exploiting the fact that a longer prefix wholly contained in a
// shorter, singleton-zone prefix must resolve to that same zone.
//
// Grounded on original_source/firewall_autozoner.py's cache-population
// loop (the plen-group scan described in spec.md §4.6), restructured as a
// small stateful type the way the teacher's pkg/util/workers.Pool wraps a
// one-shot batch operation behind a struct with a single entry point.
package batch

import (
	"sort"

	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/fib"
	"fwzoner/pkg/zoneset"
)

// Cache accelerates resolution over one batch of queries. It is built
// fresh per batch and discarded afterwards (spec.md §4.6, §5 lifecycles);
// it is not safe for concurrent use.
type Cache struct {
	fibs    map[addrspace.Family]*fib.FIB
	entries map[addrspace.Prefix]zoneset.Set
}

// NewCache builds a containment cache backed by the given per-family FIBs.
func NewCache(fibs map[addrspace.Family]*fib.FIB) *Cache {
	return &Cache{
		fibs:    fibs,
		entries: map[addrspace.Prefix]zoneset.Set{},
	}
}

// ResolveBatch runs the full containment-cache workflow over expressions
// and returns each expression's resolved zone set, keyed by its original
// text (spec.md §6 resolve_batch).
func (c *Cache) ResolveBatch(expressions []string) (map[string]zoneset.Set, error) {
	summaries := make(map[string][]addrspace.Prefix, len(expressions))
	unique := map[addrspace.Prefix]struct{}{}
	for _, expr := range expressions {
		prefixes, err := addrspace.ParseExpression(expr)
		if err != nil {
			return nil, err
		}
		summaries[expr] = prefixes
		for _, p := range prefixes {
			unique[p] = struct{}{}
		}
	}

	sorted := make([]addrspace.Prefix, 0, len(unique))
	for p := range unique {
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Len < sorted[j].Len })

	c.populate(sorted)

	results := make(map[string]zoneset.Set, len(expressions))
	for _, expr := range expressions {
		results[expr] = c.union(summaries[expr])
	}
	return results, nil
}

// Get re-summarizes a single expression and unions its cached prefix
// resolutions (spec.md §4.6 "exposed lookup for the batch consumer").
func (c *Cache) Get(expression string) (zoneset.Set, error) {
	prefixes, err := addrspace.ParseExpression(expression)
	if err != nil {
		return nil, err
	}
	return c.union(prefixes), nil
}

func (c *Cache) union(prefixes []addrspace.Prefix) zoneset.Set {
	out := zoneset.New()
	for _, p := range prefixes {
		out = out.Union(c.entries[p])
	}
	return out
}

// populate runs the plen-ascending sweep: whenever a plen group finishes,
// any of its entries that resolved to a singleton zone set pre-populate
// every not-yet-done longer prefix it contains.
func (c *Cache) populate(sorted []addrspace.Prefix) {
	done := map[addrspace.Prefix]bool{}
	n := len(sorted)
	for i := 0; i < n; {
		curPlen := sorted[i].Len
		j := i
		for j < n && sorted[j].Len == curPlen {
			j++
		}
		groupStart, groupEnd := i, j

		for k := groupStart; k < groupEnd; k++ {
			p := sorted[k]
			if done[p] {
				continue
			}
			c.resolveAndStore(p)
		}

		for k := groupStart; k < groupEnd; k++ {
			ob := sorted[k]
			if c.entries[ob].Len() != 1 {
				continue
			}
			for m := groupEnd; m < n; m++ {
				o := sorted[m]
				if done[o] {
					continue
				}
				if addrspace.Overlaps(o, ob) {
					c.entries[o] = c.entries[ob]
					done[o] = true
				}
			}
		}

		i = j
	}
}

func (c *Cache) resolveAndStore(p addrspace.Prefix) {
	f := c.fibs[p.Family()]
	if f == nil {
		c.entries[p] = zoneset.New()
		return
	}
	c.entries[p] = fib.Resolve(f, p)
}
