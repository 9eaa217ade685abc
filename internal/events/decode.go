package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/dotsible/dotsible/internal/errors"
	"github.com/dotsible/dotsible/internal/schema"
)

// maxRecordSize bounds one event line; task results can carry large
// stdout/stderr captures.
const maxRecordSize = 16 * 1024 * 1024

// Decoder reads runner events from a JSON-lines stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	return &Decoder{scanner: scanner}
}

// Line returns the 1-based number of the last line read.
func (d *Decoder) Line() int {
	return d.line
}

// Next returns the next event. Blank lines are skipped. It returns io.EOF
// when the stream is exhausted, and a decode error (carrying the line
// number) for a malformed or schema-invalid record.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		d.line++
		data := bytes.TrimSpace(d.scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		if err := schema.ValidateEvent(data); err != nil {
			return Event{}, errors.Decode(d.line, "invalid event record", err)
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return Event{}, errors.Decode(d.line, "invalid event record", err)
		}
		return ev, nil
	}

	if err := d.scanner.Err(); err != nil {
		return Event{}, errors.Decode(d.line+1, "read event stream", err)
	}
	return Event{}, io.EOF
}

// Replay decodes every event from dec and dispatches it to cb, in order.
// It stops at the first decode error or when ctx is cancelled; the
// cancellation is checked between events.
func Replay(ctx context.Context, dec *Decoder, cb Callbacks) (int, error) {
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, errors.Wrap(err, "event replay interrupted")
		}

		ev, err := dec.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		if err := Dispatch(ev, cb); err != nil {
			return count, errors.Decode(dec.Line(), "dispatch event", err)
		}
		count++
	}
}
