package cli

import (
	"github.com/dotsible/dotsible/internal/errors"
)

// cmdConfig prints the effective configuration as YAML.
func cmdConfig(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printConfigUsage()
		return 0
	}
	if len(args) > 0 {
		return usageError("config: unexpected argument: %s", args[0])
	}

	cfg, code := loadConfig(opts)
	if cfg == nil {
		return code
	}

	data, err := cfg.YAML()
	if err != nil {
		err = errors.Wrap(err, "cannot render configuration")
		out.ErrorPrefix("config: %v", err)
		return errors.GetExitCode(err)
	}

	if cfg.Source != "" {
		out.Info("# loaded from %s", cfg.Source)
	} else {
		out.Info("# defaults (no config file found)")
	}
	out.Print("%s", data)
	return 0
}

func printConfigUsage() {
	out.HelpTitle("dotsible config - print the effective configuration")

	out.HelpSection("Usage:")
	out.HelpUsage("dotsible config [--config=<path>]")

	out.HelpSection("Sources (later wins):")
	out.HelpUsage("built-in defaults")
	out.HelpUsage("~/.dotsible/callback.yaml or --config=<path>")
	out.HelpUsage("DOTSIBLE_LOG_DIR, DOTSIBLE_COLOR")
	out.Println("")
}
