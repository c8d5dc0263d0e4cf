package rib

import (
	"testing"

	"fwzoner/pkg/addrspace"
)

func TestIngestECMP(t *testing.T) {
	rows := []Row{
		{Prefix: "10.0.0.0/8", Zone: "a"},
		{Prefix: "10.0.0.0/8", Zone: "b"},
	}
	r, _, err := IngestNoHeader(rows)
	if err != nil {
		t.Fatalf("IngestNoHeader: %v", err)
	}
	p, _ := addrspace.ParsePrefix("10.0.0.0/8")
	got := r.Families[addrspace.V4][8][p]
	if got.Len() != 2 || !got.Contains("a") || !got.Contains("b") {
		t.Fatalf("got %v, want {a,b}", got)
	}
}

func TestIngestHeaderDetection(t *testing.T) {
	rows := []Row{
		{Prefix: "prefix", Zone: "zone"},
		{Prefix: "192.0.2.0/24", Zone: "eth1"},
	}
	r, _, err := Ingest(rows)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	p, _ := addrspace.ParsePrefix("192.0.2.0/24")
	if _, ok := r.Families[addrspace.V4][24][p]; !ok {
		t.Fatal("expected header row to be skipped and data row ingested")
	}
}

func TestIngestEmptyZoneSkipped(t *testing.T) {
	rows := []Row{
		{Prefix: "192.0.2.0/24", Zone: ""},
		{Prefix: "192.0.3.0/24", Zone: "eth1"},
	}
	r, warnings, err := IngestNoHeader(rows)
	if err != nil {
		t.Fatalf("IngestNoHeader: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	p, _ := addrspace.ParsePrefix("192.0.2.0/24")
	if _, ok := r.Families[addrspace.V4][24][p]; ok {
		t.Fatal("empty-zone row should not be ingested")
	}
}

func TestIngestReservedToken(t *testing.T) {
	rows := []Row{{Prefix: "192.0.2.0/24", Zone: "####NULL_ROUTED####"}}
	if _, _, err := IngestNoHeader(rows); err == nil {
		t.Fatal("expected ReservedTokenError")
	}
}

func TestBackfillDefault(t *testing.T) {
	rows := []Row{{Prefix: "192.0.2.0/24", Zone: "eth1"}}
	r, _, err := IngestNoHeader(rows)
	if err != nil {
		t.Fatalf("IngestNoHeader: %v", err)
	}
	allV4 := addrspace.V4.AllSpace()
	zones, ok := r.Families[addrspace.V4][0][allV4]
	if !ok || zones.Len() != 1 || !zones.Contains("####NULL_ROUTED####") {
		t.Fatalf("expected synthesized default route, got %v", zones)
	}
}
