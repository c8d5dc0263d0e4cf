package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type buildFIBFlags struct {
	csvSeparator string
	fibCache     string
}

// newBuildFIBCmd pre-warms the on-disk FIB cache from a RIB file alone, so
// a later `annotate` run against the same routing table skips ingestion
// and coalescing entirely (spec.md §6's persisted-FIB workflow, split out
// of the single annotate step original_source/firewall_autozoner.py
// folds it into).
func newBuildFIBCmd(root *rootFlags) *cobra.Command {
	flags := &buildFIBFlags{}

	cmd := &cobra.Command{
		Use:   "build-fib <rib-file> --fib-cache <path>",
		Short: "Build and persist a forwarding table from a routing table file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ribPath := args[0]
			if flags.fibCache == "" {
				return fmt.Errorf("build-fib: --fib-cache is required")
			}
			if err := checkReservedToken(ribPath); err != nil {
				return err
			}

			log := root.logger()
			separator := []rune(flags.csvSeparator)
			if len(separator) != 1 {
				return fmt.Errorf("--csv-separator must be a single character, got %q", flags.csvSeparator)
			}

			rows, err := readRIBCSV(ribPath, separator[0])
			if err != nil {
				return err
			}
			fibs, _, err := buildFIBs(rows, log)
			if err != nil {
				return err
			}
			if _, err := saveFIBCache(flags.fibCache, fibs, log); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.csvSeparator, "csv-separator", "c", ",", "field separator used by the routing table file")
	cmd.Flags().StringVarP(&flags.fibCache, "fib-cache", "p", "", "path to write the persisted forwarding table to (required)")
	return cmd
}
