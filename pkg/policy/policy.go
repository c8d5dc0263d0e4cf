// Package policy is the glue layer around the forwarding core: CSV column
// selection, address-field splitting, zone-set summarization into an
// "any" label or split rows, and output row assembly. None of this is
// part of the core (spec.md §1 scopes CSV/flag concerns out of C1-C6); it
// is ported from original_source/firewall_autozoner.py's __main__ block,
// expressed as a reusable Annotate function instead of a monolithic
// script body so the cmd/fwzoner CLI (pkg/cobra commands) can drive it.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"fwzoner/pkg/batch"
	"fwzoner/pkg/zoneset"
)

// Config mirrors the original tool's flag surface for the annotate step.
type Config struct {
	SourceColumn      string
	DestinationColumn string
	AnalyzeSource     bool
	AddressSeparator  string
	AllZones          bool
	ZoneLimit         int
	SplitBehavior     bool
	PreserveNullRoute bool
}

// MissingColumnError reports that a configured column name was not found
// in the input header, or that its _ZONE output column already exists.
type MissingColumnError struct {
	Column string
	Reason string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("policy: column %q: %s", e.Column, e.Reason)
}

// Annotate runs the full CSV-to-CSV transformation: given the input
// header and data rows, a containment cache already built from the RIB,
// and the union of every zone across both address families, it returns
// the annotated header and rows.
func Annotate(header []string, rows [][]string, cfg Config, cache *batch.Cache, totalZonesAllFamilies zoneset.Set) ([]string, [][]string, error) {
	srcIdx, destIdx, err := locateColumns(header, cfg)
	if err != nil {
		return nil, nil, err
	}

	var exprs []string
	for _, row := range rows {
		fields := []string{row[destIdx]}
		if cfg.AnalyzeSource {
			fields = append(fields, row[srcIdx])
		}
		for _, member := range strings.Split(strings.Join(fields, cfg.AddressSeparator), cfg.AddressSeparator) {
			if member = strings.TrimSpace(member); member != "" {
				exprs = append(exprs, member)
			}
		}
	}
	if _, err := cache.ResolveBatch(exprs); err != nil {
		return nil, nil, err
	}

	outHeader := buildHeader(header, cfg, srcIdx, destIdx)

	var outRows [][]string
	for _, row := range rows {
		rowsOut, err := annotateRow(row, cfg, cache, totalZonesAllFamilies, srcIdx, destIdx)
		if err != nil {
			return nil, nil, err
		}
		outRows = append(outRows, rowsOut...)
	}
	return outHeader, outRows, nil
}

func locateColumns(header []string, cfg Config) (srcIdx, destIdx int, err error) {
	srcIdx = -1
	if cfg.AnalyzeSource {
		srcIdx = indexOf(header, cfg.SourceColumn)
		if srcIdx == -1 {
			return 0, 0, &MissingColumnError{Column: cfg.SourceColumn, Reason: "not present in the file"}
		}
		if indexOf(header, cfg.SourceColumn+"_ZONE") != -1 {
			return 0, 0, &MissingColumnError{Column: cfg.SourceColumn + "_ZONE", Reason: "output column already present"}
		}
	}
	destIdx = indexOf(header, cfg.DestinationColumn)
	if destIdx == -1 {
		return 0, 0, &MissingColumnError{Column: cfg.DestinationColumn, Reason: "not present in the file"}
	}
	if indexOf(header, cfg.DestinationColumn+"_ZONE") != -1 {
		return 0, 0, &MissingColumnError{Column: cfg.DestinationColumn + "_ZONE", Reason: "output column already present"}
	}
	return srcIdx, destIdx, nil
}

func indexOf(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}

func buildHeader(header []string, cfg Config, srcIdx, destIdx int) []string {
	out := append([]string(nil), header...)
	if cfg.AnalyzeSource {
		out = insertAt(out, srcIdx, cfg.SourceColumn+"_ZONE")
		// destIdx shifts right by one once the source zone column lands
		// before it, same as the original's HEADER.insert ordering.
		if destIdx >= srcIdx {
			destIdx++
		}
	}
	out = insertAt(out, destIdx, cfg.DestinationColumn+"_ZONE")
	if cfg.SplitBehavior {
		out = append(out, "SPLIT")
	}
	return out
}

func insertAt(s []string, idx int, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:idx]...)
	out = append(out, v)
	out = append(out, s[idx:]...)
	return out
}

// zoneGroup is one rendered field value: the zone labels that will be
// joined with the address separator and written into one output row.
type zoneGroup []string

func annotateRow(row []string, cfg Config, cache *batch.Cache, totalZonesAllFamilies zoneset.Set, srcIdx, destIdx int) ([][]string, error) {
	var srcGroups []zoneGroup
	if cfg.AnalyzeSource {
		zones, err := resolveField(row[srcIdx], cfg, cache)
		if err != nil {
			return nil, err
		}
		srcGroups = groupZones(zones, cfg, totalZonesAllFamilies)
	}

	destZones, err := resolveField(row[destIdx], cfg, cache)
	if err != nil {
		return nil, err
	}
	destGroups := groupZones(destZones, cfg, totalZonesAllFamilies)

	split := cfg.SplitBehavior && (len(srcGroups) > 1 || len(destGroups) > 1)

	var out [][]string
	if cfg.AnalyzeSource {
		for _, sg := range srcGroups {
			for _, dg := range destGroups {
				out = append(out, assembleRow(row, cfg, srcIdx, destIdx, &sg, &dg, split))
			}
		}
	} else {
		for _, dg := range destGroups {
			out = append(out, assembleRow(row, cfg, srcIdx, destIdx, nil, &dg, split))
		}
	}
	return out, nil
}

func resolveField(field string, cfg Config, cache *batch.Cache) (zoneset.Set, error) {
	zones := zoneset.New()
	for _, member := range strings.Split(field, cfg.AddressSeparator) {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		z, err := cache.Get(member)
		if err != nil {
			return nil, fmt.Errorf("policy: resolving %q: %w", member, err)
		}
		if !cfg.PreserveNullRoute {
			z = z.Without(zoneset.NullRoute)
		}
		zones = zones.Union(z)
	}
	return zones, nil
}

// groupZones decides how a field's resolved zone set is rendered: as a
// single "any" group, as chunked groups (split behavior under a zone
// limit), or as one group holding every zone.
func groupZones(zones zoneset.Set, cfg Config, totalZonesAllFamilies zoneset.Set) []zoneGroup {
	nonNull := zones.Without(zoneset.NullRoute)

	if cfg.AllZones && nonNull.Equal(totalZonesAllFamilies) {
		return []zoneGroup{{"any"}}
	}

	if cfg.ZoneLimit > 0 && nonNull.Len() > cfg.ZoneLimit {
		if cfg.SplitBehavior {
			return chunkZones(zones, cfg.ZoneLimit)
		}
		return []zoneGroup{{"any"}}
	}

	sorted := append([]string(nil), zones...)
	sort.Strings(sorted)
	return []zoneGroup{zoneGroup(sorted)}
}

func chunkZones(zones zoneset.Set, limit int) []zoneGroup {
	sorted := append([]string(nil), zones...)
	sort.Strings(sorted)
	var groups []zoneGroup
	for i := 0; i < len(sorted); i += limit {
		end := i + limit
		if end > len(sorted) {
			end = len(sorted)
		}
		groups = append(groups, zoneGroup(sorted[i:end]))
	}
	return groups
}

func assembleRow(row []string, cfg Config, srcIdx, destIdx int, src *zoneGroup, dest *zoneGroup, split bool) []string {
	out := append([]string(nil), row...)
	if cfg.AnalyzeSource && src != nil {
		out = insertAt(out, srcIdx, strings.Join(*src, cfg.AddressSeparator))
		if destIdx >= srcIdx {
			destIdx++
		}
	}
	out = insertAt(out, destIdx, strings.Join(*dest, cfg.AddressSeparator))
	if cfg.SplitBehavior {
		if split {
			out = append(out, "true")
		} else {
			out = append(out, "false")
		}
	}
	return out
}
