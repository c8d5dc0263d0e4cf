package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"fwzoner/internal/logging"
	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/coalesce"
	"fwzoner/pkg/fib"
	"fwzoner/pkg/fibstore"
	"fwzoner/pkg/rib"
	"fwzoner/pkg/workers"
	"fwzoner/pkg/zoneset"
)

// readRIBCSV reads a RIB file with the given field separator into rib.Row
// values, the split-by-caller form pkg/rib.Ingest expects. The file is
// expected to hold two columns, prefix and zone; readRIBCSV does not care
// which columns those are named, matching original_source/
// firewall_autozoner.py's positional rib-file handling.
func readRIBCSV(path string, separator rune) ([]rib.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rib file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = separator
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("rib file: %w", err)
	}

	rows := make([]rib.Row, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		rows = append(rows, rib.Row{Prefix: rec[0], Zone: rec[1]})
	}
	return rows, nil
}

// buildFIBs runs C2-C4 (ingest, coalesce, linearize) for both families,
// building them concurrently with pkg/workers since the two families are
// fully independent (spec.md §5: "nothing about per-family FIB
// construction... forces sequential execution").
func buildFIBs(rows []rib.Row, log *logging.Logger) (map[addrspace.Family]*fib.FIB, []rib.EmptyZoneWarning, error) {
	r, warnings, err := rib.Ingest(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest rib: %w", err)
	}
	for _, w := range warnings {
		log.Warningf("%s", w)
	}

	families := []addrspace.Family{addrspace.V4, addrspace.V6}
	results := make([]*fib.FIB, len(families))

	pool := workers.NewPool(context.Background(), len(families))
	for i, family := range families {
		i, family := i, family
		pool.Submit(i, func(ctx context.Context) error {
			d := coalesce.Coalesce(family, r.Families[family])
			results[i] = fib.Build(family, d)
			return nil
		})
	}
	for _, res := range pool.Wait() {
		if res.Error != nil {
			return nil, warnings, fmt.Errorf("build fib: %w", res.Error)
		}
	}

	out := make(map[addrspace.Family]*fib.FIB, len(families))
	for i, family := range families {
		out[family] = results[i]
		log.Infof("%s: %d breakpoints, %d zones", family, len(results[i].Entries), results[i].TotalZonesStripped.Len())
	}
	return out, warnings, nil
}

// loadOrBuildFIBs serves a FIB from the on-disk cache at cachePath if one
// exists there already, building it fresh from ribPath (and, when
// cachePath is set, persisting it) otherwise. An empty cachePath always
// builds fresh and skips persistence, matching the original tool's
// plain "-p" boolean toggle generalized to an explicit path (see
// DESIGN.md).
func loadOrBuildFIBs(ribPath string, separator rune, cachePath string, log *logging.Logger) (map[addrspace.Family]*fib.FIB, error) {
	if cachePath != "" {
		if store, err := fibstore.Open(cachePath); err == nil {
			fibs, loadErr := store.Load()
			closeErr := store.Close()
			if loadErr == nil && closeErr == nil && fibsNonEmpty(fibs) {
				log.Infof("loaded FIB cache from %s", cachePath)
				return fibs, nil
			}
		}
	}

	rows, err := readRIBCSV(ribPath, separator)
	if err != nil {
		return nil, err
	}
	fibs, _, err := buildFIBs(rows, log)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if _, err := saveFIBCache(cachePath, fibs, log); err != nil {
			return nil, err
		}
	}
	return fibs, nil
}

// saveFIBCache persists fibs to cachePath, returning fibs unchanged so
// callers can chain it directly after a build step.
func saveFIBCache(cachePath string, fibs map[addrspace.Family]*fib.FIB, log *logging.Logger) (map[addrspace.Family]*fib.FIB, error) {
	store, err := fibstore.Open(cachePath)
	if err != nil {
		return nil, fmt.Errorf("open fib cache: %w", err)
	}
	defer store.Close()
	if err := store.Save(fibs); err != nil {
		return nil, fmt.Errorf("save fib cache: %w", err)
	}
	log.Infof("wrote FIB cache to %s", cachePath)
	return fibs, nil
}

func fibsNonEmpty(fibs map[addrspace.Family]*fib.FIB) bool {
	for _, f := range fibs {
		if len(f.Entries) > 0 {
			return true
		}
	}
	return false
}

// totalZonesAllFamilies unions TotalZonesStripped across every family, the
// "every zone a policy could ever resolve to" set groupZones compares
// against for the all-zones "any" collapse (spec.md §4.6, §9).
func totalZonesAllFamilies(fibs map[addrspace.Family]*fib.FIB) zoneset.Set {
	out := zoneset.New()
	for _, f := range fibs {
		out = out.Union(f.TotalZonesStripped)
	}
	return out
}
