// Command fwzoner annotates firewall policy rows with the zones that would
// forward their source and/or destination addresses, given a routing table
// (spec.md §6). It wraps the pure forwarding core (pkg/addrspace, pkg/rib,
// pkg/coalesce, pkg/fib, pkg/batch) with the CSV/CLI glue spec.md explicitly
// scopes out of the core and original_source/firewall_autozoner.py
// implements as a single script.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
