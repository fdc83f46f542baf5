package main

import (
	"os"

	"github.com/wagok/LogExplorerMCP/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
