package main

import (
	"os"

	"github.com/agentutil/memstore/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
