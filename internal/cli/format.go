package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dotsible/dotsible/internal/callback"
	"github.com/dotsible/dotsible/internal/config"
	"github.com/dotsible/dotsible/internal/errors"
	"github.com/dotsible/dotsible/internal/events"
)

// cmdFormat replays a runner event stream through the formatter.
func cmdFormat(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printFormatUsage()
		return 0
	}

	var path, logDir string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--log-dir":
			if i+1 >= len(args) {
				return usageError("format: --log-dir requires a value")
			}
			logDir = args[i+1]
			i++
		case strings.HasPrefix(arg, "--log-dir="):
			logDir = strings.TrimPrefix(arg, "--log-dir=")
		case arg != "-" && strings.HasPrefix(arg, "-"):
			return usageError("format: unknown flag: %s", arg)
		default:
			if path != "" {
				return usageError("format: unexpected argument: %s", arg)
			}
			path = arg
		}
	}

	cfg, code := loadConfig(opts)
	if cfg == nil {
		return code
	}
	if logDir == "" {
		logDir = cfg.LogDir
	}
	out.SetColor(!opts.NoColor && cfg.UseColor(out.Color()))

	logger := newLogger(opts.Verbose)
	defer func() { _ = logger.Sync() }()
	if cfg.Source != "" {
		logger.Debug("config loaded", zap.String("path", cfg.Source))
	}

	input, closeInput, err := openInput(path)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	defer closeInput()

	f, err := callback.New(callback.Options{
		Out:    out,
		Fs:     fs,
		LogDir: logDir,
		Logger: logger,
	})
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n, err := events.Replay(ctx, events.NewDecoder(input), f)
	logger.Debug("event stream finished",
		zap.Stringer("run_id", f.RunID()),
		zap.Int("events", n),
		zap.Int("log_write_errors", f.LogWriteErrors()),
		zap.String("error_log", f.ErrorLogPath()),
	)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	return 0
}

// openInput opens path, or stdin when path is empty or "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	file, err := fs.Open(path)
	if err != nil {
		return nil, nil, errors.IO(path, "cannot open event stream", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// loadConfig loads the configuration named by the global flags. On failure
// it reports the error and returns the exit code.
func loadConfig(opts *GlobalOptions) (*config.Config, int) {
	home, err := userHome()
	if err != nil {
		err = errors.Config("cannot determine home directory", err)
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}
	cfg, err := config.Load(fs, home, opts.ConfigPath)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}
	return cfg, 0
}

// newLogger returns the diagnostic logger: a development console logger on
// stderr when verbose, a no-op logger otherwise.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(out.ErrWriter()), zapcore.DebugLevel)
	return zap.New(core, zap.Development())
}

func printFormatUsage() {
	out.HelpTitle("dotsible format - render a runner event stream")

	out.HelpSection("Usage:")
	out.HelpUsage("dotsible format [file|-] [--log-dir=<dir>]")

	out.HelpSection("Arguments:")
	out.HelpFlag("[file]", "JSON-lines event stream (default: stdin)", helpFlagWidth)

	out.HelpSection("Options:")
	out.HelpFlag("--log-dir=<dir>", "Error log directory (overrides config)", helpFlagWidth)
	out.HelpFlag("-h, --help", "Show this help", helpFlagWidth)

	out.HelpSection("Examples:")
	out.HelpExample("runner-shim | dotsible format", "Render a live run")
	out.HelpExample("dotsible format run.jsonl --no-color", "Replay a recorded run without colour")
	out.Println("")
}
