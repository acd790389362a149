// Package mmap maps dataset files read-only into memory.
//
// A Mapping exposes the file as a byte slice valid until Close. Readers
// created with NewReader stream over the slice without copying through
// kernel buffers. On Unix the sequential-access hint is passed to madvise;
// platforms without mmap support fall back to reading the file.
package mmap
