package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/minio/minio-go/v7"
)

// Minio opens objects from MinIO or any S3-compatible store.
//
// The returned *minio.Object seeks with ranged requests, so only the bytes
// that are read are transferred.
type Minio struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinio returns an opener for bucket. prefix is prepended to every name.
func NewMinio(client *minio.Client, bucket, prefix string) *Minio {
	return &Minio{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Open implements Opener.
func (m *Minio) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	key := path.Join(m.prefix, name)

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.wrap(key, err)
	}

	// GetObject is lazy; Stat surfaces a missing key now.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, m.wrap(key, err)
	}
	return obj, nil
}

func (m *Minio) wrap(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return fmt.Errorf("%s/%s: %w", m.bucket, key, fs.ErrNotExist)
	}
	return fmt.Errorf("open %s/%s: %w", m.bucket, key, err)
}
