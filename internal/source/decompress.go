package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// DefaultMaxDecompressedSize bounds the memory a single inflated stream may use.
const DefaultMaxDecompressedSize = 1 << 30

// codec wraps a compressed stream with a decompressing reader.
type codec func(io.Reader) (io.ReadCloser, error)

var codecs = map[string]codec{
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
	".lz4": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(lz4.NewReader(r)), nil
	},
}

// compressedExtensions is the probe order for names without a known suffix.
var compressedExtensions = []string{".gz", ".zst", ".lz4"}

// TooLargeError is returned when a stream inflates past the configured limit.
type TooLargeError struct {
	Name  string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s: decompressed size exceeds %d bytes", e.Name, e.Limit)
}

// Decompress wraps an Opener and inflates gzip, zstd and lz4 streams.
//
// A name ending in .gz, .zst or .lz4 is inflated directly. Any other name is
// opened as is; when it does not exist, the compressed variants are tried in
// that order, so "roads.shp" finds "roads.shp.gz". Inflated streams are held
// in memory.
type Decompress struct {
	Opener Opener

	// MaxSize limits the inflated size of one stream. Zero means
	// DefaultMaxDecompressedSize.
	MaxSize int64
}

// Open implements Opener.
func (d Decompress) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	if c, ok := codecs[path.Ext(name)]; ok {
		return d.inflate(ctx, name, c)
	}

	r, err := d.Opener.Open(ctx, name)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return r, err
	}

	for _, ext := range compressedExtensions {
		r, cerr := d.inflate(ctx, name+ext, codecs[ext])
		if errors.Is(cerr, fs.ErrNotExist) {
			continue
		}
		return r, cerr
	}
	return nil, err
}

func (d Decompress) inflate(ctx context.Context, name string, c codec) (io.ReadSeekCloser, error) {
	src, err := d.Opener.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dec, err := c(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer dec.Close()

	limit := d.MaxSize
	if limit <= 0 {
		limit = DefaultMaxDecompressedSize
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(dec, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if n > limit {
		return nil, &TooLargeError{Name: name, Limit: limit}
	}
	return nopCloser{bytes.NewReader(buf.Bytes())}, nil
}
