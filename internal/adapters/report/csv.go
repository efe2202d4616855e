// Package report renders snapshot streams as delimited rows and provides
// the sinks they are written to.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/okian/burnup/internal/domain/velocity"
	"github.com/okian/burnup/pkg/metrics"
)

// dateLayout formats the row key.
const dateLayout = "2006-01-02"

// header names the report columns.
var header = []string{"date", "created", "removed", "finished"}

// Writer writes one row per snapshot as it arrives. It never buffers the
// sequence; the upstream reducer drives it one snapshot at a time.
type Writer struct {
	cw *csv.Writer
}

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithDelimiter sets the column separator. The default is a tab, which
// spreadsheet imports take without a dialog.
func WithDelimiter(d rune) Option {
	return func(w *Writer) {
		if d != 0 {
			w.cw.Comma = d
		}
	}
}

// NewWriter creates a report writer on top of w. The header row is written
// up front: a report with no data rows still names its columns.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	rw := &Writer{cw: csv.NewWriter(w)}
	rw.cw.Comma = '\t'
	for _, opt := range opts {
		opt(rw)
	}
	// A write error here sticks and resurfaces on Flush.
	_ = rw.cw.Write(header)
	return rw
}

// Write appends one snapshot row.
func (w *Writer) Write(s velocity.Snapshot) error {
	row := []string{
		s.Date.Format(dateLayout),
		strconv.Itoa(s.Created),
		strconv.Itoa(s.Removed),
		strconv.Itoa(s.Finished),
	}
	if err := w.cw.Write(row); err != nil {
		return err
	}
	metrics.RecordRowWritten()
	return nil
}

// Flush writes any buffered rows through to the sink.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
