package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fwzoner/internal/logging"
	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/fib"
	"fwzoner/pkg/fibstore"
)

type inspectFlags struct {
	csvSeparator string
	fibCache     string
}

// newInspectCmd reports per-family FIB size and zone coverage, either from
// an existing --fib-cache or by building one on the fly from a RIB file,
// for diagnosing a routing table before running annotate against it.
func newInspectCmd(root *rootFlags) *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect [rib-file]",
		Short: "Print forwarding table statistics for a routing table or FIB cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger()

			var ribPath string
			if len(args) == 1 {
				ribPath = args[0]
				if err := checkReservedToken(ribPath); err != nil {
					return err
				}
			}

			separator := []rune(flags.csvSeparator)
			if len(separator) != 1 {
				return fmt.Errorf("--csv-separator must be a single character, got %q", flags.csvSeparator)
			}

			fibs, err := inspectFIBs(ribPath, separator[0], flags.fibCache, log)
			if err != nil {
				return err
			}

			for _, family := range []addrspace.Family{addrspace.V4, addrspace.V6} {
				f := fibs[family]
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d breakpoints, %d zones (%d including null-routed space)\n",
					family, len(f.Entries), f.TotalZonesStripped.Len(), f.TotalZones.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.csvSeparator, "csv-separator", "c", ",", "field separator used by the routing table file")
	cmd.Flags().StringVarP(&flags.fibCache, "fib-cache", "p", "", "path to a persisted forwarding table (built from rib-file if missing or absent)")
	return cmd
}

// inspectFIBs serves a cached FIB if --fib-cache already holds one,
// otherwise builds fresh from ribPath, persisting the result to
// cachePath when both are given. Unlike annotate and build-fib, inspect
// may run against a cache alone with no RIB file at all.
func inspectFIBs(ribPath string, separator rune, cachePath string, log *logging.Logger) (map[addrspace.Family]*fib.FIB, error) {
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
	if ribPath == "" {
		return nil, fmt.Errorf("inspect: --fib-cache %q is empty or missing and no rib-file was given", cachePath)
	}
	return loadOrBuildFIBs(ribPath, separator, cachePath, log)
}
