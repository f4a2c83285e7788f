package executor

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// outputWriter renders emitted metric records as JSONL, one object per
// line, buffering writes the way the source's own sink does.
type outputWriter struct {
	w *bufio.Writer
}

func newOutputWriter(w io.Writer) *outputWriter {
	return &outputWriter{w: bufio.NewWriter(w)}
}

func (o *outputWriter) write(record map[string]interface{}) error {
	enc := json.NewEncoder(o.w)
	if err := enc.Encode(record); err != nil {
		return errors.Wrap(err, "failed to encode output record")
	}
	return nil
}

func (o *outputWriter) flush() error {
	if err := o.w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush output stream")
	}
	return nil
}
