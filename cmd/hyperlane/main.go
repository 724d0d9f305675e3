// Command hyperlane is the operator CLI entrypoint for the Hyperlane
// Solana-VM protocol stack: deploy, initialize, and administer the core
// programs, warp routes, and ISMs across one or more chains.
package main

import (
	"os"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
