// Package main is the entry point for the dotsible CLI.
package main

import (
	"os"

	"github.com/dotsible/dotsible/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
