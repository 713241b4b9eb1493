package main

import (
	"os"

	"github.com/meenmo/multicurve/cmd/curvectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
