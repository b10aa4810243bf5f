package main

import (
	"fmt"
	"os"

	"github.com/open-control-systems/mdnssd/components/core"
)

func main() {
	if path := os.Getenv("MDNSSD_LOG_PATH"); path != "" {
		if err := core.SetLogFile(path); err != nil {
			fmt.Fprintln(os.Stderr, "failed to set up log file:", err)
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
