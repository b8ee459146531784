package main

import (
	"github.com/s0up4200/mixwatch/cmd"
)

// Set through -ldflags at release time
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, buildTime)
	cmd.Execute()
}
