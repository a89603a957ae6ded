// Package main provides the reportai command line entrypoint.
package main

import (
	"os"

	"github.com/edwinlov3tt/report-ai-sub000/cmd/reportai/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
