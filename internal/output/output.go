// Package output provides formatted console output for the dotsible commands.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Role is a semantic colour role for a console line.
type Role int

const (
	RolePlain Role = iota
	RoleCyan
	RoleGreen
	RoleRed
	RoleYellow
	RoleHeader
	RoleWhite
	RoleDim
)

// Writer handles console output formatting.
type Writer struct {
	out    io.Writer
	err    io.Writer
	color  bool
	quiet  bool
	styles map[Role]lipgloss.Style
}

// New creates a Writer on stdout/stderr. Colour is enabled only when stdout
// is a terminal and NO_COLOR is unset.
func New() *Writer {
	return NewWithWriters(os.Stdout, os.Stderr, isTerminal() && os.Getenv("NO_COLOR") == "")
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	w := &Writer{
		out: out,
		err: err,
	}
	w.SetColor(color)
	return w
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetColor enables or disables ANSI styling.
func (w *Writer) SetColor(color bool) {
	w.color = color
	w.styles = nil
	if !color {
		return
	}
	// A dedicated renderer keeps styling independent of whether out is a TTY;
	// the caller already decided colour is wanted.
	r := lipgloss.NewRenderer(w.out)
	r.SetColorProfile(termenv.ANSI)
	w.styles = map[Role]lipgloss.Style{
		RoleCyan:   r.NewStyle().Foreground(lipgloss.Color("6")),
		RoleGreen:  r.NewStyle().Foreground(lipgloss.Color("2")),
		RoleRed:    r.NewStyle().Foreground(lipgloss.Color("1")),
		RoleYellow: r.NewStyle().Foreground(lipgloss.Color("3")),
		RoleHeader: r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		RoleWhite:  r.NewStyle().Foreground(lipgloss.Color("7")),
		RoleDim:    r.NewStyle().Faint(true),
	}
}

// Color reports whether ANSI styling is enabled.
func (w *Writer) Color() bool {
	return w.color
}

// ErrWriter returns the writer behind stderr output.
func (w *Writer) ErrWriter() io.Writer {
	return w.err
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Line writes text followed by a newline to stdout, styled with role.
// Text may contain embedded newlines; each segment is styled on its own so
// blank lines stay blank.
func (w *Writer) Line(role Role, text string) {
	fmt.Fprintln(w.out, w.Style(role, text))
}

// Style returns text rendered with the style for role, or text unchanged
// when colour is disabled.
func (w *Writer) Style(role Role, text string) string {
	style, ok := w.styles[role]
	if !w.color || !ok {
		return text
	}
	segments := strings.Split(text, "\n")
	for i, seg := range segments {
		if seg != "" {
			segments[i] = style.Render(seg)
		}
	}
	return strings.Join(segments, "\n")
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Line(RoleGreen, fmt.Sprintf(format, args...))
}

// Warning prints a warning message to stderr.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s", w.Style(RoleYellow, "warning: "+fmt.Sprintf(format, args...)))
}

// ErrorPrefix prints an error message with the dotsible prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Errorln("%s %s", w.Style(RoleRed, "dotsible:"), msg)
}

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	w.Line(RoleHeader, title)
}

// HelpSection formats a section header (e.g., "Commands:").
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Line(RoleYellow, title)
}

// HelpCommand formats a command with its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	padding := width - len(name)
	if padding < 0 {
		padding = 0
	}
	w.Println("  %s%s  %s", w.Style(RoleCyan, name), strings.Repeat(" ", padding), w.Style(RoleDim, description))
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	padding := width - len(name)
	if padding < 0 {
		padding = 0
	}
	w.Println("  %s%s  %s", w.Style(RoleYellow, name), strings.Repeat(" ", padding), w.Style(RoleDim, description))
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.Style(RoleCyan, command))
	if description != "" {
		w.Println("      %s", w.Style(RoleDim, description))
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	w.Println("  %s", usage)
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
