// Package config loads an optional YAML defaults file for the fwzoner CLI,
// so a site can pin its usual column names and separators instead of
// repeating them on every invocation. Flags passed on the command line
// always override a loaded file.
//
// Grounded on the yaml.v3 config-loading shape used by
// tools/cmd/vm-builder/config.go in the grimm-is-flywall example (struct
// tags + os.ReadFile + yaml.Unmarshal), the only repo in the pack that
// loads a YAML file as user-facing configuration rather than an output
// format.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults holds the subset of the CLI flag surface a site may want to
// pin in a file rather than type out on every run.
type Defaults struct {
	SourceColumn      string `yaml:"source_column"`
	DestinationColumn string `yaml:"destination_column"`
	CSVSeparator      string `yaml:"csv_separator"`
	AddressSeparator  string `yaml:"address_separator"`
	ZoneLimit         int    `yaml:"zone_limit"`
	AllZones          bool   `yaml:"all_zones"`
	SplitBehavior     bool   `yaml:"split_behavior"`
	NullRoute         bool   `yaml:"null_route"`
	DebugLevel        string `yaml:"debug_level"`
}

// Load reads and parses a defaults file at path.
func Load(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &d, nil
}
