package callback

import (
	"fmt"
	"strings"

	"github.com/dotsible/dotsible/internal/events"
)

// Display limits for failure output. The error log always gets everything.
const (
	maxItemLines   = 5
	maxStderrLines = 3
	maxStdoutLines = 2
)

// FailedItem is one failed iteration of a looped task.
type FailedItem struct {
	Name   string
	Msg    string
	Stderr string
	Stdout string
}

// FailureDetail is the extractable context of one failed task.
type FailureDetail struct {
	Msg     *string
	Items   []FailedItem
	Stderr  string // empty when absent
	Stdout  string // empty when absent or equal to Msg
	RC      int    // zero when absent
	HasRC   bool   // RC present and non-zero
	LogPath string
}

// ExtractFailure builds the failure detail from a task result.
func ExtractFailure(r events.Result) FailureDetail {
	d := FailureDetail{Msg: r.Msg}

	for _, item := range r.Results {
		if !item.Failed {
			continue
		}
		d.Items = append(d.Items, FailedItem{
			Name:   item.Name(),
			Msg:    item.Message(),
			Stderr: item.Stderr,
			Stdout: item.Stdout,
		})
	}

	if r.Stderr != nil {
		d.Stderr = *r.Stderr
	}
	if r.Stdout != nil && *r.Stdout != r.Message() {
		d.Stdout = *r.Stdout
	}
	if r.RC != nil && *r.RC != 0 {
		d.RC = *r.RC
		d.HasRC = true
	}
	return d
}

// Lines flattens the detail into the error log's text form.
func (d FailureDetail) Lines() []string {
	var lines []string
	if d.Msg != nil {
		lines = append(lines, "Main Error: "+*d.Msg)
	}
	for _, item := range d.Items {
		lines = append(lines, "Failed Item: "+item.Name)
		lines = append(lines, "  Error: "+item.Msg)
		if item.Stderr != "" {
			lines = append(lines, "  stderr: "+item.Stderr)
		}
		if item.Stdout != "" {
			lines = append(lines, "  stdout: "+item.Stdout)
		}
	}
	if d.Stderr != "" {
		lines = append(lines, "stderr: "+d.Stderr)
	}
	if d.Stdout != "" {
		lines = append(lines, "stdout: "+d.Stdout)
	}
	if d.HasRC {
		lines = append(lines, fmt.Sprintf("Return code: %d", d.RC))
	}
	return lines
}

// renderFailure prints the capped console view of a failure.
func (f *Formatter) renderFailure(d FailureDetail) {
	if d.Msg != nil {
		f.line(roleFailed, "       Error: "+*d.Msg)
	}

	if len(d.Items) > 0 {
		f.line(roleFailed, "       Failed items:")
		for i, item := range d.Items {
			if i == maxItemLines {
				break
			}
			f.line(roleFailed, fmt.Sprintf("         • %s: %s", item.Name, item.Msg))
		}
		if len(d.Items) > maxItemLines {
			f.line(roleFailed, fmt.Sprintf("         ... and %d more", len(d.Items)-maxItemLines))
			f.line(roleWarn, fmt.Sprintf("         📝 See %s for full details", d.LogPath))
		}
	}

	if d.Stderr != "" {
		lines := strings.Split(strings.TrimSpace(d.Stderr), "\n")
		f.line(roleFailed, "       stderr:")
		printCapped(f, lines, maxStderrLines)
		if len(lines) > maxStderrLines {
			f.line(roleFailed, fmt.Sprintf("         ... (%d more lines)", len(lines)-maxStderrLines))
		}
	}

	if d.Stdout != "" {
		lines := strings.Split(strings.TrimSpace(d.Stdout), "\n")
		f.line(roleFailed, "       stdout:")
		printCapped(f, lines, maxStdoutLines)
	}

	if d.HasRC {
		f.line(roleFailed, fmt.Sprintf("       Return code: %d", d.RC))
	}
}

// printCapped prints the non-blank lines among the first limit lines.
func printCapped(f *Formatter, lines []string, limit int) {
	for i, line := range lines {
		if i == limit {
			break
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			f.line(roleFailed, "         "+trimmed)
		}
	}
}
