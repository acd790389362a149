// Package s3 reads and writes datasets in Amazon S3.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion("us-east-1"))
//	if err != nil { ... }
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "datasets/")
//
// Reads use ranged GETs; uploads are single PutObject requests.
package s3
