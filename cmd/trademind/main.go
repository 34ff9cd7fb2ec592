package main

import (
	"os"

	"github.com/trogers1052/trademind/cmd/trademind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
