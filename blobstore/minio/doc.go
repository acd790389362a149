// Package minio reads and writes datasets in MinIO or any S3-compatible
// object store through the official MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(minioblob.Wrap(client), "datasets", "raw/")
//	rc, err := blobstore.OpenReader(ctx, store, "transactions.csv.gz")
package minio
