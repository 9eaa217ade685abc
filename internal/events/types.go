// Package events defines the boundary between the automation runner and the
// formatter: typed event payloads, a JSON-lines decoder and a dispatcher.
package events

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/dotsible/dotsible/internal/errors"
)

// Kind identifies a runner lifecycle notification.
type Kind string

const (
	KindPlaybookStart    Kind = "playbook_start"
	KindPlayStart        Kind = "play_start"
	KindTaskStart        Kind = "task_start"
	KindTaskOK           Kind = "task_ok"
	KindTaskFailed       Kind = "task_failed"
	KindTaskSkipped      Kind = "task_skipped"
	KindHostUnreachable  Kind = "host_unreachable"
	KindStats            Kind = "stats"
	KindNoHostsMatched   Kind = "no_hosts_matched"
	KindNoHostsRemaining Kind = "no_hosts_remaining"
)

// Event is one decoded runner notification.
type Event struct {
	Kind         Kind      `json:"event"`
	Play         string    `json:"play,omitempty"`
	Task         string    `json:"task,omitempty"`
	IgnoreErrors bool      `json:"ignore_errors,omitempty"`
	Result       Result    `json:"result"`
	Stats        *RunStats `json:"stats,omitempty"`
}

// Result is the runner's outcome payload for one task execution.
// Absent fields stay nil so presence can be told apart from zero values.
type Result struct {
	Msg     *string      `json:"msg,omitempty"`
	Changed *bool        `json:"changed,omitempty"`
	Failed  bool         `json:"failed,omitempty"`
	Results []ItemResult `json:"results,omitempty"`
	Stderr  *string      `json:"stderr,omitempty"`
	Stdout  *string      `json:"stdout,omitempty"`
	RC      *int         `json:"rc,omitempty"`
}

// HasMsg reports whether the result carries a message.
func (r Result) HasMsg() bool { return r.Msg != nil }

// Message returns the message, or "" when absent.
func (r Result) Message() string {
	if r.Msg == nil {
		return ""
	}
	return *r.Msg
}

// IsChanged reports the changed flag; absent means false.
func (r Result) IsChanged() bool {
	return r.Changed != nil && *r.Changed
}

// UnmarshalJSON decodes a result without rejecting unexpected field types.
// Runner modules put lists and objects in msg, stdout and stderr; those are
// kept as compact JSON text. An rc that is not an integer is dropped, and
// changed/failed count only when they are JSON booleans. Entries of results
// that are not objects are skipped.
func (r *Result) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = Result{}
	if s, ok := lenientString(fields["msg"]); ok {
		r.Msg = &s
	}
	if s, ok := lenientString(fields["stdout"]); ok {
		r.Stdout = &s
	}
	if s, ok := lenientString(fields["stderr"]); ok {
		r.Stderr = &s
	}
	if b, ok := lenientBool(fields["changed"]); ok {
		r.Changed = &b
	}
	r.Failed, _ = lenientBool(fields["failed"])
	if n, ok := lenientInt(fields["rc"]); ok {
		r.RC = &n
	}

	var items []json.RawMessage
	if err := json.Unmarshal(fields["results"], &items); err == nil {
		for _, raw := range items {
			var ir ItemResult
			if err := json.Unmarshal(raw, &ir); err != nil {
				continue
			}
			r.Results = append(r.Results, ir)
		}
	}
	return nil
}

// ItemResult is the outcome of one iteration of a looped task.
type ItemResult struct {
	Item   json.RawMessage `json:"item,omitempty"`
	Failed bool            `json:"failed,omitempty"`
	Msg    *string         `json:"msg,omitempty"`
	Stderr string          `json:"stderr,omitempty"`
	Stdout string          `json:"stdout,omitempty"`
}

// Name returns a display identifier for the item. Strings are used as is;
// objects contribute their own "item" key when present. Anything else is
// rendered as compact JSON, and a missing item renders as "{}".
func (ir ItemResult) Name() string {
	raw := bytes.TrimSpace(ir.Item)
	if len(raw) == 0 {
		return "{}"
	}
	if bytes.Equal(raw, []byte("null")) {
		return "null"
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if inner, ok := obj["item"]; ok {
			return ItemResult{Item: inner}.Name()
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// UnmarshalJSON decodes one loop item with the same leniency as Result.
func (ir *ItemResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("loop item is not an object")
	}

	*ir = ItemResult{Item: fields["item"]}
	ir.Failed, _ = lenientBool(fields["failed"])
	if s, ok := lenientString(fields["msg"]); ok {
		ir.Msg = &s
	}
	ir.Stdout, _ = lenientString(fields["stdout"])
	ir.Stderr, _ = lenientString(fields["stderr"])
	return nil
}

// lenientString returns a JSON string's value, or any other non-null value
// as compact JSON text.
func lenientString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw), true
	}
	return buf.String(), true
}

func lenientBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}

// lenientInt accepts JSON numbers with no fractional part.
func lenientInt(raw json.RawMessage) (int, bool) {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Message returns the item's message, defaulting to "Unknown error".
func (ir ItemResult) Message() string {
	if ir.Msg == nil {
		return "Unknown error"
	}
	return *ir.Msg
}

// HostSummary holds the runner's per-host outcome counts.
type HostSummary struct {
	Host     string `json:"host"`
	OK       int    `json:"ok"`
	Changed  int    `json:"changed"`
	Failures int    `json:"failures"`
	Skipped  int    `json:"skipped"`
}

// Total returns the sum of all four counts.
func (h HostSummary) Total() int {
	return h.OK + h.Changed + h.Failures + h.Skipped
}

// RunStats is the end-of-run statistics object, hosts in runner order.
type RunStats struct {
	Hosts []HostSummary `json:"hosts"`
}

// Callbacks receives runner notifications, one method per event kind.
// Implementations are driven from a single goroutine.
type Callbacks interface {
	PlaybookStart()
	PlayStart(name string)
	TaskStart(name string)
	TaskOK(task string, r Result)
	TaskFailed(task string, r Result, ignoreErrors bool)
	TaskSkipped(task string, r Result)
	HostUnreachable(task string, r Result)
	Stats(s RunStats)
	NoHostsMatched()
	NoHostsRemaining()
}

// Dispatch routes ev to the matching method of cb.
func Dispatch(ev Event, cb Callbacks) error {
	switch ev.Kind {
	case KindPlaybookStart:
		cb.PlaybookStart()
	case KindPlayStart:
		cb.PlayStart(ev.Play)
	case KindTaskStart:
		cb.TaskStart(ev.Task)
	case KindTaskOK:
		cb.TaskOK(ev.Task, ev.Result)
	case KindTaskFailed:
		cb.TaskFailed(ev.Task, ev.Result, ev.IgnoreErrors)
	case KindTaskSkipped:
		cb.TaskSkipped(ev.Task, ev.Result)
	case KindHostUnreachable:
		cb.HostUnreachable(ev.Task, ev.Result)
	case KindStats:
		var s RunStats
		if ev.Stats != nil {
			s = *ev.Stats
		}
		cb.Stats(s)
	case KindNoHostsMatched:
		cb.NoHostsMatched()
	case KindNoHostsRemaining:
		cb.NoHostsRemaining()
	default:
		return errors.Newf("unknown event kind %q", ev.Kind)
	}
	return nil
}
