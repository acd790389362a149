package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/hupe1980/ledgerdb/model"
)

// Header is the column layout written by Writer.
var Header = []string{
	ColTimestamp, ColSymbol, ColPrice, ColVolume, ColSender, ColReceiver, ColStatus,
}

// Writer encodes records as CSV with the Header layout. Timestamps are written
// in DateTimeLayout.
type Writer struct {
	csv     *csv.Writer
	loc     *time.Location
	started bool
	row     []string
	rows    int
}

// NewWriter returns a Writer over w. A nil loc means UTC.
func NewWriter(w io.Writer, loc *time.Location) *Writer {
	return &Writer{
		csv: csv.NewWriter(w),
		loc: loc,
		row: make([]string, len(Header)),
	}
}

// Write appends one row, emitting the header first.
func (w *Writer) Write(f model.Fields) error {
	if !w.started {
		if err := w.csv.Write(Header); err != nil {
			return err
		}
		w.started = true
	}
	w.row[0] = FormatDateTime(f.Timestamp, w.loc)
	w.row[1] = f.Token
	w.row[2] = strconv.FormatFloat(f.Price, 'f', -1, 64)
	w.row[3] = strconv.FormatFloat(f.Volume, 'f', -1, 64)
	w.row[4] = f.WalletFrom
	w.row[5] = f.WalletTo
	w.row[6] = f.Status
	if err := w.csv.Write(w.row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if !w.started {
		if err := w.csv.Write(Header); err != nil {
			return err
		}
		w.started = true
	}
	w.csv.Flush()
	return w.csv.Error()
}
