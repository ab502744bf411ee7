// Command legicorpus builds a per-bill corpus from legislative bulk data.
package main

import (
	"os"

	"github.com/roach88/legicorpus/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
