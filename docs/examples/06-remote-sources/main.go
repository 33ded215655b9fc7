package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

// Layers stored in S3, possibly gzip, zstd or lz4 compressed
func openFromS3(ctx context.Context) (*spaceland.Layer, error) {
	s3, err := spaceland.NewS3OpenerFromEnv(ctx, "gis-layers", "europe/")
	if err != nil {
		return nil, err
	}

	opts := spaceland.DefaultOpenOptions()
	opts.Opener = spaceland.NewDecompressOpener(s3)
	return spaceland.OpenLayer(ctx, "eu1995", opts)
}

// Layers served by MinIO, read at no more than 1MB/s
func openFromMinio(ctx context.Context) (*spaceland.Layer, error) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds: credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
	})
	if err != nil {
		return nil, err
	}

	opts := spaceland.DefaultOpenOptions()
	opts.Opener = spaceland.NewThrottledOpener(
		spaceland.NewMinioOpener(client, "gis-layers", "europe/"),
		1024*1024,
	)
	return spaceland.OpenLayer(ctx, "eu1995", opts)
}

func main() {
	ctx := context.Background()

	fmt.Println("=== Reading from S3 ===")
	layer, err := openFromS3(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Records: %d\n", layer.Len())
	layer.Close()

	fmt.Println("\n=== Reading from MinIO ===")
	layer, err = openFromMinio(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Records: %d\n", layer.Len())
	layer.Close()
}
