package main

import (
	"os"

	"singlepages/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
