package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
)

// Archive stores JSON documents (sync reports) under time-ordered keys.
type Archive struct {
	client Client
	bucket string
	now    func() time.Time
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client Client, bucket string) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Put marshals v and stores it as <prefix>/<timestamp>.json. It returns the object key.
func (a *Archive) Put(ctx context.Context, prefix string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := path.Join(prefix, a.now().Format("20060102T150405.000000000Z")+".json")
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// Get downloads key and decodes it into v.
func (a *Archive) Get(ctx context.Context, key string, v any) error {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return json.Unmarshal(data, v)
}

// List returns the keys under prefix, oldest first.
func (a *Archive) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Prune removes all but the newest keep reports under prefix and returns how
// many were removed. Failed removals are joined into the error.
func (a *Archive) Prune(ctx context.Context, prefix string, keep int) (int, error) {
	keys, err := a.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(keys) <= keep {
		return 0, nil
	}

	stale := keys[:len(keys)-keep]
	objects := make(chan minio.ObjectInfo, len(stale))
	for _, k := range stale {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)

	var errs []error
	failed := make(map[string]struct{})
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objects, minio.RemoveObjectsOptions{}) {
		if rerr.Err == nil {
			continue
		}
		failed[rerr.ObjectName] = struct{}{}
		errs = append(errs, fmt.Errorf("failed to remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	return len(stale) - len(failed), errors.Join(errs...)
}
