package main

import (
	"os"

	"github.com/dqcheck/dqcheck/internal/adapters/inbound/cli"
)

func main() {
	os.Exit(cli.Execute())
}
