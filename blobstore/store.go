package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist. It matches
// os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Store is a source of immutable blobs.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// List returns the sorted names of blobs beginning with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// WritableStore is a Store that can also write blobs.
type WritableStore interface {
	Store
	// Put writes a blob in one piece.
	Put(ctx context.Context, name string, data []byte) error
	// Create starts a streaming write. The blob becomes visible on Close.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}

// Blob is a read-only handle to a stored object.
type Blob interface {
	io.Closer
	// Size returns the length in bytes.
	Size() int64
	// ReadRange returns a reader over length bytes starting at off. Ranges
	// past the end are truncated.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// Mappable is implemented by blobs backed by memory.
type Mappable interface {
	// Bytes returns the contents, valid until the blob is closed.
	Bytes() ([]byte, error)
}

// OpenReader opens name and returns a reader over all of it. Closing the
// reader closes the blob.
func OpenReader(ctx context.Context, s Store, name string) (io.ReadCloser, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &blobReader{ReadCloser: rc, blob: b}, nil
}

type blobReader struct {
	io.ReadCloser
	blob Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}
