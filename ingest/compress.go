package ingest

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies a dataset encoding.
type Compression string

const (
	// None is an uncompressed dataset.
	None Compression = ""
	// Gzip is a gzip stream (.gz).
	Gzip Compression = "gzip"
	// Zstd is a zstandard stream (.zst, .zstd).
	Zstd Compression = "zstd"
	// LZ4 is an lz4 frame stream (.lz4).
	LZ4 Compression = "lz4"
)

// DetectCompression returns the encoding implied by the extension of name.
func DetectCompression(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error {
	if rc.close == nil {
		return nil
	}
	return rc.close()
}

// Decompress wraps r with the decoder implied by name. Closing the result
// releases the decoder but not r.
func Decompress(name string, r io.Reader) (io.ReadCloser, error) {
	switch DetectCompression(name) {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("ingest: gzip %s: %w", name, err)
		}
		return zr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("ingest: zstd %s: %w", name, err)
		}
		return readCloser{Reader: zr, close: func() error { zr.Close(); return nil }}, nil
	case LZ4:
		return readCloser{Reader: lz4.NewReader(r)}, nil
	default:
		return readCloser{Reader: r}, nil
	}
}

type writeCloser struct {
	io.Writer
	close func() error
}

func (wc writeCloser) Close() error {
	if wc.close == nil {
		return nil
	}
	return wc.close()
}

// Compress wraps w with the encoder implied by name. Close flushes the
// encoder but does not close w.
func Compress(name string, w io.Writer) (io.WriteCloser, error) {
	switch DetectCompression(name) {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("ingest: zstd %s: %w", name, err)
		}
		return zw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return writeCloser{Writer: w}, nil
	}
}
