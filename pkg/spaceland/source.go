package spaceland

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/beetlebugorg/spaceland/internal/source"
	"github.com/minio/minio-go/v7"
)

// Opener opens named byte streams. Missing streams satisfy
// errors.Is(err, fs.ErrNotExist).
type Opener = source.Opener

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc = source.OpenerFunc

// NewLocalOpener opens files under root, memory mapped where supported.
// An empty root resolves names against the working directory.
func NewLocalOpener(root string) Opener {
	return source.NewLocal(root)
}

// NewDecompressOpener inflates .gz, .zst and .lz4 streams from opener, and
// finds "name.gz" (and the other suffixes) when "name" is missing.
func NewDecompressOpener(opener Opener) Opener {
	return source.Decompress{Opener: opener}
}

// NewS3Opener downloads objects from an S3 bucket. prefix is prepended to
// every name.
func NewS3Opener(client manager.DownloadAPIClient, bucket, prefix string) Opener {
	return source.NewS3(client, bucket, prefix)
}

// NewS3OpenerFromEnv is NewS3Opener with a client built from the default AWS
// configuration chain.
func NewS3OpenerFromEnv(ctx context.Context, bucket, prefix string) (Opener, error) {
	s, err := source.NewS3FromConfig(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMinioOpener reads objects from MinIO or another S3-compatible store.
func NewMinioOpener(client *minio.Client, bucket, prefix string) Opener {
	return source.NewMinio(client, bucket, prefix)
}

// NewThrottledOpener limits the combined read rate of the streams opened
// through opener to bytesPerSec.
func NewThrottledOpener(opener Opener, bytesPerSec int) Opener {
	return source.NewThrottle(opener, bytesPerSec)
}
