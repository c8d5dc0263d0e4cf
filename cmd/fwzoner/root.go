package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fwzoner/internal/config"
	"fwzoner/internal/logging"
	"fwzoner/pkg/zoneset"
)

// rootFlags holds the persistent flags shared by every subcommand, grounded
// on the cobra command-tree structure in
// _examples/zlobste-ip6calc/internal/cli/root.go (persistent flags read
// once in NewRootCmd, subcommands added as children).
type rootFlags struct {
	configPath string
	debugLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "fwzoner",
		Short:         "Annotate firewall policy rows with the zones a routing table would forward them through",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "optional YAML file of flag defaults")
	cmd.PersistentFlags().StringVarP(&flags.debugLevel, "debug-level", "x", "WARNING", "DEBUG, INFO, WARNING, ERROR, or CRITICAL")

	cmd.AddCommand(newAnnotateCmd(flags))
	cmd.AddCommand(newBuildFIBCmd(flags))
	cmd.AddCommand(newInspectCmd(flags))
	return cmd
}

func (f *rootFlags) logger() *logging.Logger {
	return logging.New(logging.ParseLevel(f.debugLevel))
}

// loadDefaults reads the optional --config file, returning a zero-value
// Defaults if no path was given so callers can merge unconditionally.
func (f *rootFlags) loadDefaults() (*config.Defaults, error) {
	if f.configPath == "" {
		return &config.Defaults{}, nil
	}
	return config.Load(f.configPath)
}

// checkReservedToken refuses to run if the literal NULL_ROUTE sentinel
// appears anywhere in an input file's raw bytes (spec.md §6): a policy or
// RIB row that happens to contain it would be indistinguishable from the
// tool's own internal marker once ingested.
func checkReservedToken(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.Contains(data, []byte(zoneset.NullRoute)) {
		return fmt.Errorf("%s: contains the reserved token %q, refusing to run", path, zoneset.NullRoute)
	}
	return nil
}
