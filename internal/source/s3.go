package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 opens objects from an Amazon S3 bucket.
//
// Objects are downloaded whole with the transfer manager, in parallel ranged
// parts for large objects, and served from memory.
type S3 struct {
	downloader *manager.Downloader
	bucket     string
	prefix     string
}

// NewS3 returns an opener for bucket. prefix is prepended to every name.
func NewS3(client manager.DownloadAPIClient, bucket, prefix string) *S3 {
	return &S3{
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		prefix:     prefix,
	}
}

// NewS3FromConfig builds an S3 client from the default AWS configuration
// chain (environment, shared config, instance role).
func NewS3FromConfig(ctx context.Context, bucket, prefix string, optFns ...func(*config.LoadOptions) error) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func (s *S3) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open implements Opener.
func (s *S3) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	key := s.key(name)

	buf := manager.NewWriteAtBuffer(nil)
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("download s3://%s/%s: %w", s.bucket, key, err)
	}

	return nopCloser{bytes.NewReader(buf.Bytes()[:n])}, nil
}
