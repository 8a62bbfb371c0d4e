// Package storage archives sync reports in S3 compatible object storage.
//
// Client is the subset of the MinIO client in use, so tests can substitute
// core/storage/mocks. Archive writes one JSON document per report under
// <prefix>/<timestamp>.json and can list, read back and prune them.
//
// # Usage
//
//	client, err := storage.NewClient(cfg)
//	archive := storage.NewArchive(client, cfg.Bucket)
//	key, err := archive.Put(ctx, "sync/123456", report)
package storage
