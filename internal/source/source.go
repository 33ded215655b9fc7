// Package source opens the byte streams that layer readers decode.
//
// Every Opener returns an io.ReadSeekCloser owned by the caller. Streams from
// local disk are memory mapped; streams from object stores are downloaded
// into memory so that random record access stays a cheap seek.
package source

import (
	"context"
	"io"
)

// Opener opens a named stream for reading.
//
// Names are slash separated and relative to the opener's root. A missing
// stream is reported with an error satisfying errors.Is(err, fs.ErrNotExist).
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadSeekCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, name string) (io.ReadSeekCloser, error)

// Open calls f(ctx, name).
func (f OpenerFunc) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	return f(ctx, name)
}

// nopCloser gives an in-memory stream a no-op Close.
type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }
