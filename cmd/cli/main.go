package main

import (
	"os"

	"github.com/organico-dev/organico/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
