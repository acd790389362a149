// Package blobstore abstracts where datasets live.
//
// A Store opens named blobs for streaming reads; a WritableStore can also
// create them. LocalStore serves files from a directory (memory-mapped),
// MemoryStore keeps blobs in a map for tests, and the minio and s3
// subpackages read from object storage.
//
//	store := blobstore.NewLocalStore("data")
//	rc, err := blobstore.OpenReader(ctx, store, "transactions.csv.zst")
package blobstore
