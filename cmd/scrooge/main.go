// Package main is the entry point for the scrooge CLI.
package main

import (
	"os"

	"github.com/smallbiznis/scrooge/cmd/scrooge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
