// Package callback renders automation runner events as human-readable
// deployment progress and keeps a per-run log of failure details.
//
// A Formatter is driven by one event source on one goroutine; it holds no
// locks and starts no goroutines.
package callback

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dotsible/dotsible/internal/errors"
	"github.com/dotsible/dotsible/internal/events"
	"github.com/dotsible/dotsible/internal/output"
)

const (
	bannerWidth    = 70
	separatorWidth = 50
)

// Colour roles used by the formatter.
const (
	roleBanner = output.RoleCyan
	roleHeader = output.RoleHeader
	roleOK     = output.RoleGreen
	roleFailed = output.RoleRed
	roleWarn   = output.RoleYellow
	roleDetail = output.RoleWhite
)

// Counters is the run's display bookkeeping. The end-of-run summary uses the
// runner's own per-host stats, not these.
type Counters struct {
	Tasks     int
	Plays     int
	Completed int
	Changed   int
	Unchanged int
	Failed    int
	Skipped   int
}

// Options configures a Formatter.
type Options struct {
	// Out receives console lines. Defaults to output.New().
	Out *output.Writer
	// Fs is the filesystem holding the error log. Defaults to the OS.
	Fs afero.Fs
	// LogDir is the error log directory. Required.
	LogDir string
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Formatter turns runner notifications into console output.
// It implements events.Callbacks.
type Formatter struct {
	out         *output.Writer
	log         *ErrorLog
	logger      *zap.Logger
	runID       ulid.ULID
	counters    Counters
	currentPlay string
}

var _ events.Callbacks = (*Formatter)(nil)

// New creates a Formatter and its run's error log. The log directory is
// created here and the log file name is fixed to the construction time.
func New(opts Options) (*Formatter, error) {
	if opts.LogDir == "" {
		return nil, errors.New("log directory is required")
	}
	if opts.Out == nil {
		opts.Out = output.New()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	started := opts.Now()
	runID := ulid.MustNew(ulid.Timestamp(started), ulid.DefaultEntropy())
	logger := opts.Logger.With(zap.String("run_id", runID.String()))

	log, err := NewErrorLog(opts.Fs, opts.LogDir, started, opts.Now, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("formatter ready", zap.String("error_log", log.Path()))

	return &Formatter{
		out:    opts.Out,
		log:    log,
		logger: logger,
		runID:  runID,
	}, nil
}

// Counters returns a snapshot of the run counters.
func (f *Formatter) Counters() Counters {
	return f.counters
}

// CurrentPlay returns the name of the play being run, as declared.
func (f *Formatter) CurrentPlay() string {
	return f.currentPlay
}

// ErrorLogPath returns the path of this run's error log.
func (f *Formatter) ErrorLogPath() string {
	return f.log.Path()
}

// LogWriteErrors returns how many failure records could not be written.
func (f *Formatter) LogWriteErrors() int {
	return f.log.Failures()
}

// RunID identifies this run in diagnostics.
func (f *Formatter) RunID() ulid.ULID {
	return f.runID
}

func (f *Formatter) line(role output.Role, text string) {
	f.out.Line(role, text)
}

// PlaybookStart prints the deployment banner.
func (f *Formatter) PlaybookStart() {
	rule := strings.Repeat("=", bannerWidth)
	f.line(roleBanner, "\n"+rule)
	f.line(roleBanner, "🚀 DOTSIBLE DEPLOYMENT STARTING")
	f.line(roleBanner, rule)
}

// PlayStart prints the decorated play heading.
func (f *Formatter) PlayStart(name string) {
	f.currentPlay = name
	f.counters.Plays++

	f.line(roleHeader, "\n"+DecoratePlay(name))
	f.line(roleBanner, strings.Repeat("-", separatorWidth))
}

// TaskStart announces tasks that perform a notable action. Status tasks
// stay silent until their result arrives.
func (f *Formatter) TaskStart(name string) {
	f.counters.Tasks++

	category := Classify(name)
	f.logger.Debug("task started", zap.String("task", name), zap.Stringer("category", category))

	switch category {
	case CategoryStatus:
		return
	case CategoryPackage, CategoryGeneric:
		if containsAny(fold(name), progressKeywords) {
			f.line(roleBanner, "  "+StatusIcon("working")+" "+name)
		}
	}
}

// TaskOK renders a successful task.
func (f *Formatter) TaskOK(task string, r events.Result) {
	f.counters.Completed++

	switch Classify(task) {
	case CategoryStatus:
		if isPackageStatusTask(task) {
			if pkg, status, ok := parsePackageStatus(r.Message()); ok {
				state, role := "missing", roleWarn
				if strings.Contains(status, "INSTALLED") {
					state, role = "installed", roleOK
				}
				f.line(role, fmt.Sprintf("    %s %s: %s", StatusIcon(state), pkg, status))
				return
			}
		}
		f.renderStatusMessage(r)
		return
	}

	if r.IsChanged() {
		f.counters.Changed++
		f.line(roleOK, "    "+StatusIcon("ok")+" "+task)
		return
	}
	f.counters.Unchanged++
	f.line(roleOK, "    "+StatusIcon("ok")+" "+task+" (no change needed)")
}

// renderStatusMessage re-emits the summary lines of a display task.
func (f *Formatter) renderStatusMessage(r events.Result) {
	if !r.HasMsg() {
		return
	}
	msg := r.Message()
	if !strings.Contains(msg, "===") && !strings.Contains(msg, "✅") {
		return
	}
	for _, line := range strings.Split(msg, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.Contains(line, "✅") || strings.Contains(fold(line), "completed"):
			f.line(roleOK, "  "+trimmed)
		case strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-"):
			f.line(roleDetail, "    "+trimmed)
		}
	}
}

// TaskFailed renders a failed task and records its detail in the error log.
func (f *Formatter) TaskFailed(task string, r events.Result, ignoreErrors bool) {
	f.counters.Failed++

	if ignoreErrors {
		f.line(roleWarn, "    "+StatusIcon("ignored")+"  "+task+" (ignored)")
		return
	}

	f.line(roleFailed, "    "+StatusIcon("failed")+" "+task)

	detail := ExtractFailure(r)
	detail.LogPath = f.log.Path()
	f.renderFailure(detail)

	if lines := detail.Lines(); len(lines) > 0 {
		f.log.Record(task, strings.Join(lines, "\n"))
	}
}

// TaskSkipped mentions skipped tasks that would have changed the system.
func (f *Formatter) TaskSkipped(task string, _ events.Result) {
	f.counters.Skipped++

	if containsAny(fold(task), skipVisibleKeywords) {
		f.line(roleBanner, "    "+StatusIcon("skipped")+"  "+task+" (skipped)")
	}
}

// HostUnreachable reports an unreachable host for a task.
func (f *Formatter) HostUnreachable(task string, _ events.Result) {
	f.line(roleFailed, "    "+StatusIcon("unreachable")+" "+task+" (unreachable)")
}

// NoHostsMatched reports an empty inventory match.
func (f *Formatter) NoHostsMatched() {
	f.line(roleFailed, "❌ No hosts matched. Check your inventory configuration.")
}

// NoHostsRemaining reports that every host failed or was unreachable.
func (f *Formatter) NoHostsRemaining() {
	f.line(roleFailed, "❌ No hosts remaining. All hosts failed or were unreachable.")
}
