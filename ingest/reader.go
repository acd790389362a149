package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/ledgerdb/model"
)

// ErrBadRow marks a row that could not be turned into a record. Rows() yields
// it and continues with the next row.
var ErrBadRow = errors.New("ingest: bad row")

// Missing is the value given to absent text columns.
const Missing = model.Missing

// Column names understood by the reader.
const (
	ColTimestamp    = "timestamp"
	ColSymbol       = "symbol"
	ColCryptoSymbol = "crypto_symbol"
	ColPrice        = "price"
	ColAmountUSD    = "amount_usd"
	ColVolume       = "volume"
	ColFeeUSD       = "fee_usd"
	ColSender       = "sender_wallet"
	ColReceiver     = "receiver_wallet"
	ColStatus       = "status"
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithTimestampColumn sets the column holding the timestamp.
func WithTimestampColumn(name string) ReaderOption {
	return func(r *Reader) {
		r.tsColumn = name
	}
}

// WithLocation sets the zone for timestamps without one. Default UTC.
func WithLocation(loc *time.Location) ReaderOption {
	return func(r *Reader) {
		r.loc = loc
	}
}

// WithComma sets the field delimiter. Default ','.
func WithComma(c rune) ReaderOption {
	return func(r *Reader) {
		r.csv.Comma = c
	}
}

// Reader decodes a CSV dataset with a header row.
type Reader struct {
	csv      *csv.Reader
	tsColumn string
	loc      *time.Location
	header   []string
	col      map[string]int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	rd := &Reader{
		csv:      cr,
		tsColumn: ColTimestamp,
	}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Header reads the header row if needed and returns the column names.
func (r *Reader) Header() ([]string, error) {
	if r.header != nil {
		return r.header, nil
	}
	rec, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ingest: missing header row")
		}
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	r.header = make([]string, len(rec))
	r.col = make(map[string]int, len(rec))
	for i, name := range rec {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		r.header[i] = name
		if _, dup := r.col[name]; !dup {
			r.col[name] = i
		}
	}
	return r.header, nil
}

// HasColumn reports whether the header names column. It reads the header if
// needed.
func (r *Reader) HasColumn(name string) bool {
	if _, err := r.Header(); err != nil {
		return false
	}
	_, ok := r.col[name]
	return ok
}

// Rows yields one model.Fields per data row. Rows that cannot be converted
// yield an error wrapping ErrBadRow and iteration continues; any other error
// ends the sequence.
func (r *Reader) Rows() iter.Seq2[model.Fields, error] {
	return func(yield func(model.Fields, error) bool) {
		if _, err := r.Header(); err != nil {
			yield(model.Fields{}, err)
			return
		}
		for {
			rec, err := r.csv.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					if !yield(model.Fields{}, fmt.Errorf("%w: %w", ErrBadRow, err)) {
						return
					}
					continue
				}
				yield(model.Fields{}, fmt.Errorf("ingest: read: %w", err))
				return
			}
			f, err := r.convert(rec)
			if err != nil {
				line, _ := r.csv.FieldPos(0)
				err = fmt.Errorf("%w: line %d: %w", ErrBadRow, line, err)
			}
			if !yield(f, err) {
				return
			}
		}
	}
}

func (r *Reader) field(rec []string, name string) (string, bool) {
	i, ok := r.col[name]
	if !ok || i >= len(rec) {
		return "", false
	}
	return strings.TrimSpace(rec[i]), true
}

func (r *Reader) first(rec []string, names ...string) string {
	for _, name := range names {
		if v, _ := r.field(rec, name); v != "" {
			return v
		}
	}
	return ""
}

func (r *Reader) text(rec []string, name string) string {
	if v, _ := r.field(rec, name); v != "" {
		return v
	}
	return Missing
}

func (r *Reader) convert(rec []string) (model.Fields, error) {
	raw, ok := r.field(rec, r.tsColumn)
	if !ok {
		return model.Fields{}, fmt.Errorf("no %q column", r.tsColumn)
	}
	ts, err := ParseTimestamp(raw, r.loc)
	if err != nil {
		return model.Fields{}, err
	}

	f := model.Fields{
		Timestamp:    ts,
		TimestampRaw: raw,
		Token:        r.first(rec, ColSymbol, ColCryptoSymbol),
		Price:        number(r.first(rec, ColPrice, ColAmountUSD)),
		Volume:       number(r.first(rec, ColVolume, ColFeeUSD)),
		WalletFrom:   r.text(rec, ColSender),
		WalletTo:     r.text(rec, ColReceiver),
		Status:       r.text(rec, ColStatus),
	}
	if f.Token == "" {
		f.Token = Missing
	}

	for i, name := range r.header {
		if i >= len(rec) || r.known(name) {
			continue
		}
		if f.Extra == nil {
			f.Extra = make(map[string]string)
		}
		f.Extra[name] = rec[i]
	}
	return f, nil
}

func (r *Reader) known(name string) bool {
	switch name {
	case r.tsColumn, ColSymbol, ColCryptoSymbol, ColPrice, ColAmountUSD,
		ColVolume, ColFeeUSD, ColSender, ColReceiver, ColStatus:
		return true
	}
	return false
}

// number parses s as a float; anything unparsable or non-finite is 0.
func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
