package main

import (
	"os"

	"github.com/blinky-companion/sync-agent/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
