// Package main provides the spyglass binary.
package main

import (
	"fmt"
	"os"

	"github.com/spyglass-re/spyglass/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
