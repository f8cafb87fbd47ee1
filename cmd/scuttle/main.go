// Command scuttle is a concurrent port scanner with TCP connect, SYN
// stealth, and UDP strategies, rate limiting, and local scan history.
package main

import (
	"github.com/HueCodes/Scuttle/cmd/cli"
)

// Build information set via ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
