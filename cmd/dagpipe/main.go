// dagpipe validates and renders YAML pipeline definitions.
//
// Usage:
//
//	dagpipe validate <name|file.yaml>... [--dir=<path>]
//	dagpipe plan <name|file.yaml> [--format=table|markdown|dot]
//	dagpipe version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
