package main

import (
	"os"

	"github.com/matchbook-dev/matchbook/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
