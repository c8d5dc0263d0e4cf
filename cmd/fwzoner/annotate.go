package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fwzoner/internal/config"
	"fwzoner/pkg/batch"
	"fwzoner/pkg/policy"
)

type annotateFlags struct {
	outputFile        string
	sourceColumn      string
	destinationColumn string
	analyzeSource     bool
	csvSeparator      string
	addressSeparator  string
	allZones          bool
	zoneLimit         int
	splitBehavior     bool
	preserveNullRoute bool
	fibCache          string
}

// newAnnotateCmd is the main entry point: it mirrors
// original_source/firewall_autozoner.py's argparse surface (flag letters
// included, spec.md §4/§6), wiring the CSV glue in this package to the
// forwarding core via pkg/batch and pkg/policy.
func newAnnotateCmd(root *rootFlags) *cobra.Command {
	flags := &annotateFlags{}

	cmd := &cobra.Command{
		Use:   "annotate <policy-file> <rib-file>",
		Short: "Annotate a firewall policy CSV with zones resolved from a routing table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, root, flags, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.outputFile, "output-file", "o", "zoned.csv", "path to write the annotated policy to")
	f.StringVarP(&flags.sourceColumn, "source-column", "1", "source", "name of the source-address column")
	f.StringVarP(&flags.destinationColumn, "destination-column", "2", "destination", "name of the destination-address column")
	f.BoolVarP(&flags.analyzeSource, "source", "s", false, "also resolve and annotate the source column")
	f.StringVarP(&flags.csvSeparator, "csv-separator", "c", ",", "field separator used by both CSV files")
	f.StringVarP(&flags.addressSeparator, "address-separator", "r", ";", "separator between multiple addresses within one field")
	f.BoolVarP(&flags.allZones, "all-zones", "a", false, "collapse a field that resolves to every known zone into \"any\"")
	f.IntVarP(&flags.zoneLimit, "zone-limit", "z", 0, "collapse (or split, with --split-behavior) a field resolving to more than this many zones; 0 disables the limit")
	f.BoolVarP(&flags.splitBehavior, "split-behavior", "b", false, "split an over-limit field into multiple output rows instead of collapsing it to \"any\"")
	f.BoolVarP(&flags.preserveNullRoute, "null-route", "n", false, "keep the null-route marker in resolved zone sets instead of stripping it")
	f.StringVarP(&flags.fibCache, "fib-cache", "p", "", "path to a persisted forwarding table to read from and/or write to")
	return cmd
}

func runAnnotate(cmd *cobra.Command, root *rootFlags, flags *annotateFlags, policyPath, ribPath string) error {
	defaults, err := root.loadDefaults()
	if err != nil {
		return err
	}
	applyDefaults(cmd, flags, defaults)
	if defaults.DebugLevel != "" && !cmd.Flags().Changed("debug-level") {
		root.debugLevel = defaults.DebugLevel
	}
	log := root.logger()

	if err := checkReservedToken(policyPath); err != nil {
		return err
	}
	if err := checkReservedToken(ribPath); err != nil {
		return err
	}

	separator := []rune(flags.csvSeparator)
	if len(separator) != 1 {
		return fmt.Errorf("--csv-separator must be a single character, got %q", flags.csvSeparator)
	}
	addrSeparator := flags.addressSeparator
	if addrSeparator == "" {
		return fmt.Errorf("--address-separator must not be empty")
	}

	fibs, err := loadOrBuildFIBs(ribPath, separator[0], flags.fibCache, log)
	if err != nil {
		return err
	}

	header, rows, err := readPolicyCSV(policyPath, separator[0])
	if err != nil {
		return err
	}

	cache := batch.NewCache(fibs)
	cfg := policy.Config{
		SourceColumn:      flags.sourceColumn,
		DestinationColumn: flags.destinationColumn,
		AnalyzeSource:     flags.analyzeSource,
		AddressSeparator:  addrSeparator,
		AllZones:          flags.allZones,
		ZoneLimit:         flags.zoneLimit,
		SplitBehavior:     flags.splitBehavior,
		PreserveNullRoute: flags.preserveNullRoute,
	}

	outHeader, outRows, err := policy.Annotate(header, rows, cfg, cache, totalZonesAllFamilies(fibs))
	if err != nil {
		return err
	}

	if err := writePolicyCSV(flags.outputFile, separator[0], outHeader, outRows); err != nil {
		return err
	}
	log.Infof("wrote %d rows to %s", len(outRows), flags.outputFile)
	return nil
}

// applyDefaults fills in any flag the user did not pass on the command
// line from the loaded --config file, so a site's usual settings only
// need to be typed once. A flag cobra reports as Changed always wins over
// the file.
func applyDefaults(cmd *cobra.Command, flags *annotateFlags, d *config.Defaults) {
	changed := cmd.Flags().Changed
	if d.SourceColumn != "" && !changed("source-column") {
		flags.sourceColumn = d.SourceColumn
	}
	if d.DestinationColumn != "" && !changed("destination-column") {
		flags.destinationColumn = d.DestinationColumn
	}
	if d.CSVSeparator != "" && !changed("csv-separator") {
		flags.csvSeparator = d.CSVSeparator
	}
	if d.AddressSeparator != "" && !changed("address-separator") {
		flags.addressSeparator = d.AddressSeparator
	}
	if d.ZoneLimit != 0 && !changed("zone-limit") {
		flags.zoneLimit = d.ZoneLimit
	}
	if d.AllZones && !changed("all-zones") {
		flags.allZones = true
	}
	if d.SplitBehavior && !changed("split-behavior") {
		flags.splitBehavior = true
	}
	if d.NullRoute && !changed("null-route") {
		flags.preserveNullRoute = true
	}
}

func readPolicyCSV(path string, separator rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("policy file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = separator
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("policy file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("policy file: empty")
	}
	return records[0], records[1:], nil
}

func writePolicyCSV(path string, separator rune, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = separator
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output file: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("output file: %w", err)
	}
	w.Flush()
	return w.Error()
}
