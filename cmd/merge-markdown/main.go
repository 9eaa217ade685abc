// Command merge-markdown concatenates the .md files of a directory into one
// file inside it.
package main

import (
	"os"

	"github.com/dotsible/dotsible/internal/cli"
)

func main() {
	os.Exit(cli.RunMergeMarkdown(os.Args[1:]))
}
