package main

import (
	"os"

	"github.com/arthur-debert/switchtower/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
