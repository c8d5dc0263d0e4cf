package policy

import (
	"testing"

	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/batch"
	"fwzoner/pkg/coalesce"
	"fwzoner/pkg/fib"
	"fwzoner/pkg/rib"
)

func newCache(t *testing.T, rows []rib.Row) *batch.Cache {
	t.Helper()
	r, _, err := rib.IngestNoHeader(rows)
	if err != nil {
		t.Fatalf("IngestNoHeader: %v", err)
	}
	d := coalesce.Coalesce(addrspace.V4, r.Families[addrspace.V4])
	f := fib.Build(addrspace.V4, d)
	return batch.NewCache(map[addrspace.Family]*fib.FIB{addrspace.V4: f})
}

func TestAnnotateBasic(t *testing.T) {
	// No default route: ingestion backfills 0.0.0.0/0 with the null route.
	c := newCache(t, []rib.Row{
		{Prefix: "192.0.2.0/24", Zone: "eth1"},
		{Prefix: "198.51.100.0/24", Zone: "eth2"},
	})
	cfg := Config{
		DestinationColumn: "destination",
		AddressSeparator:  ";",
	}
	header := []string{"name", "destination"}
	rows := [][]string{
		{"rule1", "192.0.2.5"},
	}
	outHeader, outRows, err := Annotate(header, rows, cfg, c, nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	wantHeader := []string{"name", "destination_ZONE", "destination"}
	if !equalSlices(outHeader, wantHeader) {
		t.Fatalf("header = %v, want %v", outHeader, wantHeader)
	}
	if len(outRows) != 1 {
		t.Fatalf("got %d rows, want 1", len(outRows))
	}
	if outRows[0][1] != "eth1" {
		t.Errorf("zone column = %q, want eth1", outRows[0][1])
	}
}

func TestAnnotateMissingColumn(t *testing.T) {
	c := newCache(t, []rib.Row{{Prefix: "192.0.2.0/24", Zone: "eth1"}})
	cfg := Config{DestinationColumn: "dst", AddressSeparator: ";"}
	_, _, err := Annotate([]string{"name", "destination"}, nil, cfg, c, nil)
	if err == nil {
		t.Fatal("expected MissingColumnError")
	}
}

func TestAnnotateZoneLimitCollapsesToAny(t *testing.T) {
	c := newCache(t, []rib.Row{
		{Prefix: "10.0.0.0/8", Zone: "a"},
		{Prefix: "10.0.0.0/8", Zone: "b"},
		{Prefix: "10.0.0.0/8", Zone: "c"},
	})
	cfg := Config{
		DestinationColumn: "destination",
		AddressSeparator:  ";",
		ZoneLimit:         2,
	}
	header := []string{"destination"}
	rows := [][]string{{"10.1.2.3"}}
	_, outRows, err := Annotate(header, rows, cfg, c, nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if outRows[0][0] != "any" {
		t.Errorf("got %q, want any (3 zones exceeds limit of 2)", outRows[0][0])
	}
}

func TestAnnotateSplitBehaviorEmitsMultipleRows(t *testing.T) {
	c := newCache(t, []rib.Row{
		{Prefix: "10.0.0.0/8", Zone: "a"},
		{Prefix: "10.0.0.0/8", Zone: "b"},
		{Prefix: "10.0.0.0/8", Zone: "c"},
	})
	cfg := Config{
		DestinationColumn: "destination",
		AddressSeparator:  ";",
		ZoneLimit:         2,
		SplitBehavior:     true,
	}
	header := []string{"destination"}
	rows := [][]string{{"10.1.2.3"}}
	_, outRows, err := Annotate(header, rows, cfg, c, nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	// 3 zones chunked at limit 2 -> two groups -> two output rows, each
	// flagged "true" in the trailing SPLIT column.
	if len(outRows) != 2 {
		t.Fatalf("got %d rows, want 2", len(outRows))
	}
	for _, r := range outRows {
		if r[len(r)-1] != "true" {
			t.Errorf("row %v: SPLIT column = %q, want true", r, r[len(r)-1])
		}
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
