package callback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dotsible/dotsible/internal/events"
	"github.com/dotsible/dotsible/internal/output"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testLogDir = "/home/deploy/.dotsible"

var testStart = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

const testLogPath = testLogDir + "/error_details_20240309_140507.log"

// newTestFormatter creates a Formatter writing plain text to a buffer and
// its error log to an in-memory filesystem.
func newTestFormatter(t *testing.T) (*Formatter, *bytes.Buffer, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	stdout := &bytes.Buffer{}
	f, err := New(Options{
		Out:    output.NewWithWriters(stdout, io.Discard, false),
		Fs:     fs,
		LogDir: testLogDir,
		Now:    func() time.Time { return testStart },
	})
	require.NoError(t, err)
	return f, stdout, fs
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func outputLines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func readLog(t *testing.T, fs afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fs, testLogPath)
	require.NoError(t, err)
	return string(data)
}

func TestNew_CreatesLogDirectory(t *testing.T) {
	f, _, fs := newTestFormatter(t)

	isDir, err := afero.DirExists(fs, testLogDir)
	require.NoError(t, err)
	assert.True(t, isDir)
	assert.Equal(t, testLogPath, f.ErrorLogPath())

	exists, err := afero.Exists(fs, testLogPath)
	require.NoError(t, err)
	assert.False(t, exists, "log file should only appear on the first failure")
}

func TestNew_RequiresLogDir(t *testing.T) {
	_, err := New(Options{Fs: afero.NewMemMapFs()})
	assert.Error(t, err)
}

func TestNew_UnwritableLogDir(t *testing.T) {
	_, err := New(Options{
		Out:    output.NewWithWriters(io.Discard, io.Discard, false),
		Fs:     afero.NewReadOnlyFs(afero.NewMemMapFs()),
		LogDir: testLogDir,
	})
	assert.Error(t, err)
}

func TestNew_RunIDCarriesStartTime(t *testing.T) {
	f, _, _ := newTestFormatter(t)
	assert.Equal(t, testStart.UnixMilli(), int64(f.RunID().Time()))
}

func TestPlaybookStart(t *testing.T) {
	f, stdout, _ := newTestFormatter(t)

	f.PlaybookStart()

	rule := strings.Repeat("=", 70)
	want := "\n" + rule + "\n🚀 DOTSIBLE DEPLOYMENT STARTING\n" + rule + "\n"
	assert.Equal(t, want, stdout.String())
	assert.Equal(t, Counters{}, f.Counters())
}

func TestPlayStart(t *testing.T) {
	tests := []struct {
		play string
		want string
	}{
		{"Pre-Flight Checks", "🔍 System Validation"},
		{"Platform-Specific Setup", "🔧 Platform Configuration"},
		{"Application Installation", "📱 Application Setup"},
		{"Profile-Specific Tweaks", "👤 Profile Configuration"},
		{"Final Cleanup", "🏁 Final Setup"},
		{"Platform-Specific Application", "🔧 Platform Configuration"},
		{"Dotfiles", "📋 Dotfiles"},
		{"pre-flight lowercase", "📋 pre-flight lowercase"},
	}

	for _, tt := range tests {
		t.Run(tt.play, func(t *testing.T) {
			f, stdout, _ := newTestFormatter(t)

			f.PlayStart(tt.play)

			assert.Equal(t, "\n"+tt.want+"\n"+strings.Repeat("-", 50)+"\n", stdout.String())
			assert.Equal(t, 1, f.Counters().Plays)
			assert.Equal(t, tt.play, f.CurrentPlay())
		})
	}
}

func TestTaskStart(t *testing.T) {
	tests := []struct {
		task string
		want string
	}{
		{"Install Homebrew packages", "  🔄 Install Homebrew packages\n"},
		{"Configure git", "  🔄 Configure git\n"},
		{"Setup SSH keys", "  🔄 Setup SSH keys\n"},
		{"Create config directory", "  🔄 Create config directory\n"},
		{"Gather facts", ""},
		{"Display installation status", ""},
		{"Check install prerequisites", ""},
	}

	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			f, stdout, _ := newTestFormatter(t)

			f.TaskStart(tt.task)

			assert.Equal(t, tt.want, stdout.String())
			assert.Equal(t, 1, f.Counters().Tasks)
		})
	}
}

func TestTaskStart_LogsCategory(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f, err := New(Options{
		Out:    output.NewWithWriters(io.Discard, io.Discard, false),
		Fs:     afero.NewMemMapFs(),
		LogDir: testLogDir,
		Now:    func() time.Time { return testStart },
		Logger: zap.New(core),
	})
	require.NoError(t, err)

	f.TaskStart("Install Homebrew packages")
	f.TaskStart("Display installation status")
	f.TaskStart("Gather facts")

	started := logs.FilterMessage("task started").All()
	require.Len(t, started, 3)
	var got []string
	for _, entry := range started {
		got = append(got, entry.ContextMap()["category"].(string))
		assert.Equal(t, f.RunID().String(), entry.ContextMap()["run_id"])
	}
	assert.Equal(t, []string{"package", "status", "generic"}, got)
}

func TestTaskOK_PackageStatus(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"installed", "foo: INSTALLED", "    ✅ foo: INSTALLED\n"},
		{"missing", "bar: MISSING", "    ❌ bar: MISSING\n"},
		{"extra colon", "baz: INSTALLED: 1.2.3", "    ✅ baz: INSTALLED\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, stdout, _ := newTestFormatter(t)

			f.TaskOK("Show package status", events.Result{Msg: strPtr(tt.msg)})

			assert.Equal(t, tt.want, stdout.String())
		})
	}
}

func TestTaskOK_PackageStatusUnparsable(t *testing.T) {
	tests := []struct {
		name string
		msg  *string
	}{
		{"no msg", nil},
		{"no colon", strPtr("foo INSTALLED")},
		{"no status token", strPtr("foo: present")},
		{"empty package", strPtr(": INSTALLED")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, stdout, _ := newTestFormatter(t)

			f.TaskOK("Package status", events.Result{Msg: tt.msg})

			assert.Empty(t, stdout.String())
			assert.Equal(t, 0, f.Counters().Changed)
		})
	}
}

func TestTaskOK_StatusMessage(t *testing.T) {
	f, stdout, _ := newTestFormatter(t)

	msg := strings.Join([]string{
		"=== Installation Summary ===",
		"✅ Git configured",
		"",
		"• zsh",
		"- tmux",
		"   ",
		"Setup completed for all tools",
		"plain line",
	}, "\n")
	f.TaskOK("Display summary", events.Result{Msg: strPtr(msg)})

	want := "  ✅ Git configured\n" +
		"    • zsh\n" +
		"    - tmux\n" +
		"  Setup completed for all tools\n"
	assert.Equal(t, want, stdout.String())
}

func TestTaskOK_StatusMessageWithoutMarker(t *testing.T) {
	f, stdout, _ := newTestFormatter(t)

	f.TaskOK("Show versions", events.Result{Msg: strPtr("git 2.44\n• zsh 5.9")})
	f.TaskOK("Display banner", events.Result{Changed: boolPtr(true)})

	assert.Empty(t, stdout.String())
	assert.Equal(t, 0, f.Counters().Changed)
}

func TestTaskOK_Generic(t *testing.T) {
	f, stdout, _ := newTestFormatter(t)

	f.TaskOK("Install ripgrep", events.Result{Changed: boolPtr(true)})
	f.TaskOK("Link dotfiles", events.Result{Changed: boolPtr(false)})
	f.TaskOK("Gather facts", events.Result{})

	want := "    ✅ Install ripgrep\n" +
		"    ✅ Link dotfiles (no change needed)\n" +
		"    ✅ Gather facts (no change needed)\n"
	assert.Equal(t, want, stdout.String())

	c := f.Counters()
	assert.Equal(t, 3, c.Completed)
	assert.Equal(t, 1, c.Changed)
	assert.Equal(t, 2, c.Unchanged)
}

func TestTaskFailed_Ignored(t *testing.T) {
	f, stdout, fs := newTestFormatter(t)

	f.TaskFailed("Install optional fonts", events.Result{
		Msg:    strPtr("download failed"),
		Stderr: strPtr("curl: (6) Could not resolve host"),
		RC:     intPtr(6),
	}, true)

	assert.Equal(t, "    ⚠️  Install optional fonts (ignored)\n", stdout.String())
	assert.Equal(t, 1, f.Counters().Failed)

	exists, err := afero.Exists(fs, testLogPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTaskFailed_LoopItems(t *testing.T) {
	f, stdout, fs := newTestFormatter(t)

	var items []events.ItemResult
	for i := 1; i <= 6; i++ {
		item, _ := json.Marshal(fmt.Sprintf("pkg%d", i))
		items = append(items, events.ItemResult{
			Item:   item,
			Failed: true,
			Msg:    strPtr(fmt.Sprintf("boom %d", i)),
			Stderr: fmt.Sprintf("stderr %d", i),
		})
	}
	items = append(items, events.ItemResult{Item: json.RawMessage(`"ok-pkg"`), Failed: false})

	f.TaskFailed("Install CLI tools", events.Result{Results: items}, false)

	lines := outputLines(stdout)
	assert.Equal(t, "    ❌ Install CLI tools", lines[0])
	assert.Equal(t, "       Failed items:", lines[1])
	assert.Equal(t, 5, countPrefix(lines, "         • "))
	assert.Equal(t, "         • pkg1: boom 1", lines[2])
	assert.Contains(t, lines, "         ... and 1 more")
	assert.Contains(t, lines, "         📝 See "+testLogPath+" for full details")
	assert.NotContains(t, stdout.String(), "ok-pkg")

	logText := readLog(t, fs)
	for i := 1; i <= 6; i++ {
		assert.Contains(t, logText, fmt.Sprintf("Failed Item: pkg%d\n  Error: boom %d\n  stderr: stderr %d", i, i, i))
	}
	assert.NotContains(t, logText, "ok-pkg")
}

func TestTaskFailed_FiveItemsNoOverflow(t *testing.T) {
	f, stdout, _ := newTestFormatter(t)

	var items []events.ItemResult
	for i := 0; i < 5; i++ {
		items = append(items, events.ItemResult{Item: json.RawMessage(fmt.Sprintf(`{"item":"p%d"}`, i)), Failed: true})
	}
	f.TaskFailed("Install", events.Result{Results: items}, false)

	lines := outputLines(stdout)
	assert.Equal(t, 5, countPrefix(lines, "         • "))
	assert.Contains(t, lines, "         • p0: Unknown error")
	assert.NotContains(t, stdout.String(), "more")
	assert.NotContains(t, stdout.String(), "📝")
}

func TestTaskFailed_FullDetail(t *testing.T) {
	f, stdout, fs := newTestFormatter(t)

	f.TaskFailed("Run bootstrap script", events.Result{
		Msg:    strPtr("non-zero return code"),
		Stderr: strPtr("line1\n\nline3\nline4\nline5\n"),
		Stdout: strPtr("out1\nout2\nout3"),
		RC:     intPtr(2),
	}, false)

	want := "    ❌ Run bootstrap script\n" +
		"       Error: non-zero return code\n" +
		"       stderr:\n" +
		"         line1\n" +
		"         line3\n" +
		"         ... (2 more lines)\n" +
		"       stdout:\n" +
		"         out1\n" +
		"         out2\n" +
		"       Return code: 2\n"
	assert.Equal(t, want, stdout.String())

	logText := readLog(t, fs)
	rule := strings.Repeat("=", 80)
	wantLog := "\n" + rule + "\n" +
		"TIMESTAMP: 2024-03-09 14:05:07\n" +
		"TASK: Run bootstrap script\n" +
		rule + "\n" +
		"Main Error: non-zero return code\n" +
		"stderr: line1\n\nline3\nline4\nline5\n\n" +
		"stdout: out1\nout2\nout3\n" +
		"Return code: 2\n"
	assert.Equal(t, wantLog, logText)
}

func TestTaskFailed_StdoutEqualToMsgHidden(t *testing.T) {
	f, stdout, fs := newTestFormatter(t)

	f.TaskFailed("Run script", events.Result{
		Msg:    strPtr("same text"),
		Stdout: strPtr("same text"),
		RC:     intPtr(0),
	}, false)

	assert.Equal(t, "    ❌ Run script\n       Error: same text\n", stdout.String())
	logText := readLog(t, fs)
	assert.NotContains(t, logText, "stdout:")
	assert.NotContains(t, logText, "Return code")
}

func TestTaskFailed_NoDetailWritesNoLog(t *testing.T) {
	f, stdout, fs := newTestFormatter(t)

	f.TaskFailed("Mystery", events.Result{Stderr: strPtr(""), RC: intPtr(0)}, false)

	assert.Equal(t, "    ❌ Mystery\n", stdout.String())
	exists, err := afero.Exists(fs, testLogPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTaskFailed_AllFailuresShareOneLogFile(t *testing.T) {
	f, _, fs := newTestFormatter(t)

	f.TaskFailed("First", events.Result{Msg: strPtr("one")}, false)
	f.TaskFailed("Second", events.Result{Msg: strPtr("two")}, false)

	entries, err := afero.ReadDir(fs, testLogDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	logText := readLog(t, fs)
	assert.Equal(t, 2, strings.Count(logText, "TIMESTAMP: "))
	assert.Less(t, strings.Index(logText, "TASK: First"), strings.Index(logText, "TASK: Second"))
	assert.Equal(t, 2, f.Counters().Failed)
}

func TestTaskSkipped(t *testing.T) {
	tests := []struct {
		task string
		want string
	}{
		{"Install Windows packages", "    ⏭️  Install Windows packages (skipped)\n"},
		{"Configure macOS defaults", "    ⏭️  Configure macOS defaults (skipped)\n"},
		{"Platform detection", "    ⏭️  Platform detection (skipped)\n"},
		{"Link dotfiles", ""},
	}

	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			f, stdout, _ := newTestFormatter(t)

			f.TaskSkipped(tt.task, events.Result{})

			assert.Equal(t, tt.want, stdout.String())
			assert.Equal(t, 1, f.Counters().Skipped)
		})
	}
}

func TestHostUnreachable(t *testing.T) {
	f, stdout, _ := newTestFormatter(t)

	f.HostUnreachable("Gather facts", events.Result{})

	assert.Equal(t, "    🚫 Gather facts (unreachable)\n", stdout.String())
}

func TestNoHosts(t *testing.T) {
	f, stdout, _ := newTestFormatter(t)

	f.NoHostsMatched()
	f.NoHostsRemaining()

	want := "❌ No hosts matched. Check your inventory configuration.\n" +
		"❌ No hosts remaining. All hosts failed or were unreachable.\n"
	assert.Equal(t, want, stdout.String())
}

func TestFormatter_ColorOutput(t *testing.T) {
	stdout := &bytes.Buffer{}
	f, err := New(Options{
		Out:    output.NewWithWriters(stdout, io.Discard, true),
		Fs:     afero.NewMemMapFs(),
		LogDir: testLogDir,
	})
	require.NoError(t, err)

	f.HostUnreachable("Gather facts", events.Result{})

	assert.Contains(t, stdout.String(), "\x1b[")
	assert.Contains(t, stdout.String(), "🚫 Gather facts (unreachable)")
}
