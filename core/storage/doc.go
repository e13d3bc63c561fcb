// Package storage wraps the MinIO Go client for the reconciliation report archive.
//
// The Client interface covers the handful of operations the archive needs and is
// mocked in core/storage/mocks. Both AWS S3 and self-hosted MinIO work.
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
