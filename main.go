package main

import (
	"os"

	"github.com/PhelGc/fieldops/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
