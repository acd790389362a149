package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the canonical textual timestamp form.
const DateTimeLayout = "2006-01-02 15:04:05"

// ErrBadTimestamp is returned for values that are not a recognized timestamp.
var ErrBadTimestamp = errors.New("ingest: bad timestamp")

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp converts raw to epoch seconds. It accepts an integer number
// of seconds, RFC 3339 and the ISO-8601 date-time forms, and DateTimeLayout.
// Values without a zone are interpreted in loc; a nil loc means UTC.
func ParseTimestamp(raw string, loc *time.Location) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Unix(), nil
		}
	}
	if t, err := time.ParseInLocation(DateTimeLayout, s, loc); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
}

// ParseDateTime accepts only DateTimeLayout; numeric epoch values are
// rejected.
func ParseDateTime(raw string, loc *time.Location) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return 0, fmt.Errorf("%w: %q, want %q", ErrBadTimestamp, raw, "YYYY-MM-DD HH:MM:SS")
	}
	return t.Unix(), nil
}

// FormatDateTime renders epoch seconds in DateTimeLayout.
func FormatDateTime(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(ts, 0).In(loc).Format(DateTimeLayout)
}
