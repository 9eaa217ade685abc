package cli

import (
	"github.com/dotsible/dotsible/internal/errors"
	"github.com/dotsible/dotsible/internal/mdmerge"
)

const mergeUsage = "Usage: merge-markdown <input_dir> <output_file>"

// RunMergeMarkdown is the entry point of the standalone merge-markdown
// command.
func RunMergeMarkdown(args []string) int {
	return cmdMergeMarkdown(args)
}

// cmdMergeMarkdown merges the .md files of a directory. Anything other than
// exactly two arguments prints the usage line and creates nothing.
func cmdMergeMarkdown(args []string) int {
	if len(args) != 2 {
		err := errors.Usage(mergeUsage)
		out.Println("%s", err.Message)
		return err.ExitCode()
	}

	res, err := mdmerge.Merge(fs, args[0], args[1])
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	out.Success("Merged %d Markdown files into %s.", res.Files, res.OutputPath)
	return 0
}
