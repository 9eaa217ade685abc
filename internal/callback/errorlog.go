package callback

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dotsible/dotsible/internal/errors"
)

const (
	logFilePrefix      = "error_details_"
	logFileStampLayout = "20060102_150405"
	logRecordLayout    = "2006-01-02 15:04:05"
	logRuleWidth       = 80
)

// ErrorLog appends failure detail records to one file per run.
// The file name is fixed when the log is created; every record of the run
// goes to the same file.
type ErrorLog struct {
	fs       afero.Fs
	path     string
	now      func() time.Time
	logger   *zap.Logger
	failures int
}

// NewErrorLog creates dir if needed and names the run's log file after
// started.
func NewErrorLog(fs afero.Fs, dir string, started time.Time, now func() time.Time, logger *zap.Logger) (*ErrorLog, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IO(dir, "cannot create log directory", err)
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	name := logFilePrefix + started.Format(logFileStampLayout) + ".log"
	return &ErrorLog{
		fs:     fs,
		path:   filepath.Join(dir, name),
		now:    now,
		logger: logger,
	}, nil
}

// Path returns the log file path.
func (l *ErrorLog) Path() string {
	return l.path
}

// Append writes one record for task. Each call opens, writes and closes the
// file.
func (l *ErrorLog) Append(task, detail string) (err error) {
	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = f.WriteString(formatRecord(l.now(), task, detail))
	return err
}

// Record appends a record and discards any write error. Failed writes are
// counted and reported on the diagnostic logger only, so console output
// never depends on the log file.
func (l *ErrorLog) Record(task, detail string) {
	if err := l.Append(task, detail); err != nil {
		l.failures++
		l.logger.Warn("error log write failed",
			zap.String("path", l.path),
			zap.String("task", task),
			zap.Error(err))
	}
}

// Failures returns how many records could not be written.
func (l *ErrorLog) Failures() int {
	return l.failures
}

func formatRecord(at time.Time, task, detail string) string {
	rule := strings.Repeat("=", logRuleWidth)
	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	b.WriteString("TIMESTAMP: " + at.Format(logRecordLayout) + "\n")
	b.WriteString("TASK: " + task + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(detail + "\n")
	return b.String()
}
