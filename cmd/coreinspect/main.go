// coreinspect evaluates a mechanical core's upgrade ledger offline. It reads
// a YAML document holding the core's stored data (the structured Upgrades
// table, flat upgrade_* keys, or both) and reports what every accessory
// would see at each energy tier.
//
// Usage:
//
//	coreinspect eval core.yaml [--tier emergency] [--output yaml]
//	coreinspect modules core.yaml
//	coreinspect gate ORE_VISION health-regen
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
