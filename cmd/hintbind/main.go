// Command hintbind checks and applies marker declarations.
//
//	hintbind check [--defs FILE]... [--openapi FILE]... [PACKAGE]...
//	hintbind bind --target NAME [--defs FILE]... [--openapi FILE]... [--package PATTERN]... [--values FILE|-]
//	hintbind convert --openapi FILE [-o FILE]
//	hintbind markers
//	hintbind version
//
// Settings come from hintbind.toml (or --config) and are overridden by
// flags.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}

		os.Exit(1)
	}
}
