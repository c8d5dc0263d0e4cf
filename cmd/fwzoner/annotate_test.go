package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Integration tests drive the cobra command tree end to end the way
// zlobste-ip6calc/internal/cli/root_test.go exercises its own commands:
// SetArgs + Execute against real temp files, reading back written output
// rather than calling package functions directly.

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestAnnotateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	rib := writeTempFile(t, dir, "rib.csv", strings.Join([]string{
		"0.0.0.0/0,edge",
		"192.0.2.0/25,dmz",
		"192.0.2.128/25,internal",
	}, "\n")+"\n")
	policy := writeTempFile(t, dir, "policy.csv", strings.Join([]string{
		"name,source,destination",
		"rule1,10.9.9.9,192.0.2.5",
	}, "\n")+"\n")
	out := filepath.Join(dir, "zoned.csv")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"annotate", policy, rib, "-o", out, "-s"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "source_ZONE") || !strings.Contains(got, "destination_ZONE") {
		t.Fatalf("missing zone columns: %s", got)
	}
	if !strings.Contains(got, "dmz") {
		t.Fatalf("expected dmz zone for 192.0.2.5, got: %s", got)
	}
	if !strings.Contains(got, "edge") {
		t.Fatalf("expected edge zone for 10.9.9.9 (default route), got: %s", got)
	}
}

func TestAnnotateRejectsReservedToken(t *testing.T) {
	dir := t.TempDir()
	rib := writeTempFile(t, dir, "rib.csv", "0.0.0.0/0,####NULL_ROUTED####\n")
	policy := writeTempFile(t, dir, "policy.csv", "name,destination\nrule1,10.0.0.1\n")
	out := filepath.Join(dir, "zoned.csv")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"annotate", policy, rib, "-o", out})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a RIB containing the reserved token")
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatal("output file should not have been written")
	}
}

func TestBuildFIBThenAnnotateUsesCache(t *testing.T) {
	dir := t.TempDir()
	rib := writeTempFile(t, dir, "rib.csv", strings.Join([]string{
		"10.0.0.0/8,corp",
		"::/0,v6edge",
	}, "\n")+"\n")
	cachePath := filepath.Join(dir, "fib-cache")

	build := newRootCmd()
	build.SetOut(&bytes.Buffer{})
	build.SetArgs([]string{"build-fib", rib, "-p", cachePath})
	if err := build.Execute(); err != nil {
		t.Fatalf("build-fib: %v", err)
	}

	policy := writeTempFile(t, dir, "policy.csv", "name,destination\nrule1,10.1.2.3\n")
	out := filepath.Join(dir, "zoned.csv")

	annotate := newRootCmd()
	annotate.SetOut(&bytes.Buffer{})
	annotate.SetArgs([]string{"annotate", policy, rib, "-o", out, "-p", cachePath})
	if err := annotate.Execute(); err != nil {
		t.Fatalf("annotate with cache: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "corp") {
		t.Fatalf("expected corp zone from cached FIB, got: %s", string(data))
	}
}

func TestInspectReportsFamilyStats(t *testing.T) {
	dir := t.TempDir()
	rib := writeTempFile(t, dir, "rib.csv", strings.Join([]string{
		"0.0.0.0/0,edge",
		"192.0.2.0/24,dmz",
	}, "\n")+"\n")

	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"inspect", rib})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "v4:") || !strings.Contains(output, "v6:") {
		t.Fatalf("expected per-family stats, got: %s", output)
	}
}
