// Package rib implements C2: ingestion of a raw, possibly-overlapping
// routing table into per-family, per-prefix-length buckets, ready for the
// coalescer (pkg/coalesce). Mirrors
// original_source/firewall_autozoner.py's populate_linearized_fib ingestion
// half, and is parsed the way the teacher's pkg/iptoasn/parser.go reads
// TSV rows: a row sequence handed in already split by the caller, so this
// package stays free of any CSV/field-separator concerns (spec.md §1 scopes
// CSV parsing out of the core).
package rib

import (
	"fmt"

	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/zoneset"
)

// ReservedTokenError reports that the reserved NULL_ROUTE literal appeared
// in RIB input, where it is forbidden because it would collide with the
// internal sentinel.
type ReservedTokenError struct {
	Row int
}

func (e *ReservedTokenError) Error() string {
	return fmt.Sprintf("rib: row %d uses the reserved zone label %q", e.Row, zoneset.NullRoute)
}

// EmptyZoneWarning records a RIB row skipped for having an empty zone field.
type EmptyZoneWarning struct {
	Row    int
	Prefix string
}

func (w EmptyZoneWarning) String() string {
	return fmt.Sprintf("route %s has no zone, skipping (row %d)", w.Prefix, w.Row)
}

// Levels is a family's prefix-length buckets: Levels[plen] maps a Prefix at
// that exact length to its accumulated ZoneSet (ECMP union of every RIB row
// for that prefix).
type Levels []map[addrspace.Prefix]zoneset.Set

// RIB holds, per address family, the bucketed routes produced by Ingest.
type RIB struct {
	Families map[addrspace.Family]Levels
}

func newRIB() *RIB {
	r := &RIB{Families: map[addrspace.Family]Levels{}}
	for _, f := range []addrspace.Family{addrspace.V4, addrspace.V6} {
		levels := make(Levels, f.Bits()+1)
		for i := range levels {
			levels[i] = make(map[addrspace.Prefix]zoneset.Set)
		}
		r.Families[f] = levels
	}
	return r
}

// Row is one RIB input line after field-splitting: (prefix text, zone text).
type Row struct {
	Prefix string
	Zone   string
}

// Ingest builds a RIB from rows. The first row is treated as a header and
// skipped if field 0 fails to parse as a prefix (spec.md §4.2); callers
// that know there is no header line can call IngestNoHeader instead to
// skip the heuristic.
func Ingest(rows []Row) (*RIB, []EmptyZoneWarning, error) {
	return ingest(rows, detectHeader(rows))
}

// IngestNoHeader builds a RIB from rows with no header-detection heuristic,
// treating every row as data. Use when the caller already knows there is no
// header line (see DESIGN.md for why this exists alongside Ingest).
func IngestNoHeader(rows []Row) (*RIB, []EmptyZoneWarning, error) {
	return ingest(rows, false)
}

func detectHeader(rows []Row) bool {
	if len(rows) == 0 {
		return false
	}
	_, err := addrspace.ParsePrefix(rows[0].Prefix)
	return err != nil
}

func ingest(rows []Row, skipFirst bool) (*RIB, []EmptyZoneWarning, error) {
	r := newRIB()
	var warnings []EmptyZoneWarning
	start := 0
	if skipFirst {
		start = 1
	}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if row.Zone == "" {
			warnings = append(warnings, EmptyZoneWarning{Row: rowNum, Prefix: row.Prefix})
			continue
		}
		if row.Zone == zoneset.NullRoute || row.Prefix == zoneset.NullRoute {
			return nil, warnings, &ReservedTokenError{Row: rowNum}
		}
		prefix, err := addrspace.ParsePrefix(row.Prefix)
		if err != nil {
			return nil, warnings, fmt.Errorf("rib: row %d: %w", rowNum, err)
		}
		levels := r.Families[prefix.Family()]
		levels[prefix.Len][prefix] = levels[prefix.Len][prefix].Add(row.Zone)
	}
	backfillDefault(r)
	return r, warnings, nil
}

// backfillDefault inserts 0.0.0.0/0 -> {NULL_ROUTE} (or ::/0) for any family
// whose level-0 bucket is empty, guaranteeing full address-space coverage
// for the coalescer (spec.md §4.2).
func backfillDefault(r *RIB) {
	for family, levels := range r.Families {
		if len(levels[0]) == 0 {
			levels[0][family.AllSpace()] = zoneset.New(zoneset.NullRoute)
		}
	}
}
