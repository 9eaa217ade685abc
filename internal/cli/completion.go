package cli

import (
	"fmt"
	"strings"
)

// completionShells lists the shells a completion script can be generated for.
var completionShells = []string{"bash", "zsh", "fish"}

// globalFlagNames are the long global flags offered by completion.
var globalFlagNames = []string{"--quiet", "--verbose", "--no-color", "--config", "--help", "--version"}

// cmdCompletion generates shell completion scripts.
func cmdCompletion(args []string) int {
	shell := ""
	alias := ""

	for _, arg := range args {
		switch {
		case arg == "-h" || arg == "--help":
			printCompletionUsage()
			return 0
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case strings.HasPrefix(arg, "-"):
			return usageError("completion: unknown flag: %s", arg)
		default:
			if shell != "" {
				return usageError("completion: unexpected argument: %s", arg)
			}
			shell = arg
		}
	}

	cmdName := "dotsible"
	if alias != "" {
		cmdName = alias
	}

	switch shell {
	case "bash":
		out.Print("%s", bashCompletion(cmdName))
	case "zsh":
		out.Print("%s", zshCompletion(cmdName))
	case "fish":
		out.Print("%s", fishCompletion(cmdName))
	case "":
		return usageError("completion: shell required (%s)", strings.Join(completionShells, ", "))
	default:
		return usageError("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
	}
	return 0
}

func printCompletionUsage() {
	out.HelpTitle("dotsible completion - generate shell completion scripts")

	out.HelpSection("Usage:")
	out.HelpUsage("dotsible completion <shell> [--alias=<name>]")

	out.HelpSection("Installation:")
	out.Println("  Bash:  eval \"$(dotsible completion bash)\"")
	out.Println("  Zsh:   eval \"$(dotsible completion zsh)\"")
	out.Println("  Fish:  dotsible completion fish | source")
	out.Println("")
}

func commandNames() []string {
	names := make([]string, 0, len(builtinCommands))
	for _, c := range builtinCommands {
		names = append(names, c.name)
	}
	return names
}

func bashCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	return fmt.Sprintf(`# dotsible bash completion
# Add to ~/.bashrc: eval "$(dotsible completion bash)"

%s() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
        %s)
            COMPREPLY=($(compgen -W "%s %s" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            return
            ;;
        format|merge-md|--config|--log-dir)
            COMPREPLY=($(compgen -f -- "${cur}"))
            return
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=($(compgen -W "%s" -- "${cur}"))
        return
    fi
    COMPREPLY=($(compgen -f -- "${cur}"))
}

complete -F %s %s
`, funcName, cmdName,
		strings.Join(commandNames(), " "), strings.Join(globalFlagNames, " "),
		strings.Join(completionShells, " "),
		strings.Join(globalFlagNames, " "),
		funcName, cmdName)
}

func zshCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var sb strings.Builder
	fmt.Fprintf(&sb, "#compdef %s\n# dotsible zsh completion\n# Add to ~/.zshrc: eval \"$(dotsible completion zsh)\"\n\n", cmdName)
	fmt.Fprintf(&sb, "%s() {\n    local -a commands\n    commands=(\n", funcName)
	for _, c := range builtinCommands {
		fmt.Fprintf(&sb, "        '%s:%s'\n", c.name, c.description)
	}
	sb.WriteString("    )\n\n")
	sb.WriteString("    if (( CURRENT == 2 )); then\n")
	sb.WriteString("        _describe -t commands 'command' commands\n")
	sb.WriteString("        return\n    fi\n\n")
	sb.WriteString("    case \"${words[2]}\" in\n")
	fmt.Fprintf(&sb, "        completion) _values 'shell' %s ;;\n", strings.Join(completionShells, " "))
	sb.WriteString("        format|merge-md) _files ;;\n")
	sb.WriteString("    esac\n}\n\n")
	fmt.Fprintf(&sb, "compdef %s %s\n", funcName, cmdName)
	return sb.String()
}

func fishCompletion(cmdName string) string {
	var sb strings.Builder
	sb.WriteString("# dotsible fish completion\n# Add to config: dotsible completion fish | source\n\n")

	for _, c := range builtinCommands {
		fmt.Fprintf(&sb, "complete -c %s -n '__fish_use_subcommand' -f -a '%s' -d '%s'\n", cmdName, c.name, c.description)
	}

	sb.WriteString("\n# Global flags\n")
	fmt.Fprintf(&sb, "complete -c %s -s q -l quiet -d 'Omit informational lines'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -s v -l verbose -d 'Diagnostic logging'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -l no-color -d 'Disable colored output'\n", cmdName)
	fmt.Fprintf(&sb, "complete -c %s -l config -r -d 'Configuration file'\n", cmdName)

	sb.WriteString("\n# completion shells\n")
	for _, shell := range completionShells {
		fmt.Fprintf(&sb, "complete -c %s -n '__fish_seen_subcommand_from completion' -f -a '%s'\n", cmdName, shell)
	}
	return sb.String()
}
