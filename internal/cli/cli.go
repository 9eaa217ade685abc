// Package cli provides command-line interface functionality for dotsible.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/dotsible/dotsible/internal/errors"
	"github.com/dotsible/dotsible/internal/output"
)

// Version is set at build time.
var Version = "dev"

// out is the shared output writer for CLI commands.
var out = output.New()

// fs is the filesystem commands read and write. Tests swap in a MemMapFs.
var fs afero.Fs = afero.NewOsFs()

// stdin is the event stream source when no file is given.
var stdin io.Reader = os.Stdin

// userHome resolves the home directory used for the default config and log
// locations.
var userHome = os.UserHomeDir

// Help text alignment widths.
const (
	helpCommandWidth = 22
	helpFlagWidth    = 18
)

// wantsHelp returns true if args contain -h or --help.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		out.Println("dotsible %s", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	cmd, cmdArgs := remaining[0], remaining[1:]

	switch cmd {
	case "format":
		return cmdFormat(cmdArgs, opts)
	case "merge-md":
		return cmdMergeMarkdown(cmdArgs)
	case "config":
		return cmdConfig(cmdArgs, opts)
	case "completion":
		return cmdCompletion(cmdArgs)
	default:
		return usageError("unknown command %q (run 'dotsible help' for usage)", cmd)
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet      bool
	Verbose    bool
	NoColor    bool
	ConfigPath string
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Flags may appear anywhere in the argument list; everything that is not a
// global flag is returned in order.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
		case arg == "--no-color":
			opts.NoColor = true
			i++
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, nil, errors.Usage("--config requires a value")
			}
			opts.ConfigPath = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--config="):
			opts.ConfigPath = strings.TrimPrefix(arg, "--config=")
			i++
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if opts.Quiet && opts.Verbose {
		return nil, nil, errors.Usage("--quiet and --verbose are mutually exclusive")
	}

	out.SetQuiet(opts.Quiet)
	if opts.NoColor {
		out.SetColor(false)
	}

	return opts, remaining, nil
}

// usageError reports a wrong-argument error and returns its exit code.
func usageError(format string, args ...interface{}) int {
	err := errors.Usage(fmt.Sprintf(format, args...))
	out.ErrorPrefix("%v", err)
	return errors.GetExitCode(err)
}

func printUsage() {
	out.HelpTitle("dotsible - deployment output formatter and Markdown tools")

	out.HelpSection("Usage:")
	out.HelpUsage("dotsible [flags] <command> [args]")

	out.HelpSection("Commands:")
	for _, c := range builtinCommands {
		out.HelpCommand(c.usage, c.description, helpCommandWidth)
	}

	printGlobalFlags()

	out.HelpSection("Examples:")
	out.HelpExample("runner-shim | dotsible format", "Render a live event stream")
	out.HelpExample("dotsible format events.jsonl", "Replay a recorded run")
	out.HelpExample("dotsible merge-md docs all.md", "Merge docs/*.md into docs/all.md")
	out.Println("")
}

func printGlobalFlags() {
	out.HelpSection("Global Flags:")
	out.HelpFlag("-q, --quiet", "Omit informational lines", helpFlagWidth)
	out.HelpFlag("-v, --verbose", "Diagnostic logging on stderr", helpFlagWidth)
	out.HelpFlag("--no-color", "Disable colored output", helpFlagWidth)
	out.HelpFlag("--config=<path>", "Configuration file", helpFlagWidth)
	out.HelpFlag("-h, --help", "Show this help", helpFlagWidth)
	out.HelpFlag("--version", "Show version", helpFlagWidth)

	out.HelpSection("Environment:")
	out.HelpFlag("DOTSIBLE_LOG_DIR", "Error log directory", helpFlagWidth)
	out.HelpFlag("DOTSIBLE_COLOR", "auto, always or never", helpFlagWidth)
	out.HelpFlag("NO_COLOR", "Disable colored output", helpFlagWidth)
}

// commandInfo describes a built-in command for help and completion.
type commandInfo struct {
	name        string
	usage       string
	description string
}

var builtinCommands = []commandInfo{
	{"format", "format [file|-]", "Render a runner event stream"},
	{"merge-md", "merge-md <dir> <out>", "Merge the .md files of a directory"},
	{"config", "config", "Print the effective configuration"},
	{"completion", "completion <shell>", "Generate shell completion (bash, zsh, fish)"},
	{"version", "version", "Show version information"},
	{"help", "help", "Show help"},
}
