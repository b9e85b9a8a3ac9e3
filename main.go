// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Agekey.
//
// Usage:
//
//	go run . [flags]
//	./agekey [flags]
//
// Running without a subcommand launches the TUI. See --help for options.
package main

import (
	"log"
	"os"

	"github.com/toeirei/agekey/ui/cli"
)

// main is the entrypoint for the Agekey CLI.
func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("agekey error: %v", err)
		os.Exit(1)
	}
}
