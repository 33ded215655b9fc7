package spaceland

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/beetlebugorg/spaceland/internal/parser"
)

// OpenTable opens a dBase III attribute table.
//
// The header and field descriptors are read immediately; records are read on
// demand. The table owns the stream until Close.
//
// Example:
//
//	table, err := spaceland.OpenTable(ctx, "eu1995.dbf", spaceland.OpenOptions{Encoding: "latin1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer table.Close()
func OpenTable(ctx context.Context, name string, opts OpenOptions) (*Table, error) {
	r, err := opts.opener().Open(ctx, name)
	if err != nil {
		return nil, err
	}

	t, err := parser.NewTable(r, parser.TableOptions{
		Encoding: opts.Encoding,
		Logger:   opts.logger().With("path", name),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// OpenShapefile opens an ESRI shapefile geometry stream.
//
// Only the 100-byte header is read here. A shape type that cannot be decoded
// is reported by the first call to Records or All.
func OpenShapefile(ctx context.Context, name string, opts OpenOptions) (*Shapefile, error) {
	r, err := opts.opener().Open(ctx, name)
	if err != nil {
		return nil, err
	}

	s, err := parser.NewShapefile(r, parser.ShapefileOptions{
		Strict: opts.Strict,
		Logger: opts.logger().With("path", name),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// maxCPGSize bounds how much of a .cpg sidecar is read.
const maxCPGSize = 256

// DetectEncoding returns the encoding named on the first line of the .cpg
// sidecar called name. It falls back to DefaultEncoding when the sidecar is
// missing, unreadable, or names an unsupported encoding.
func DetectEncoding(ctx context.Context, name string, opts OpenOptions) string {
	logger := opts.logger().With("path", name)

	r, err := opts.opener().Open(ctx, name)
	if err != nil {
		logger.Debug("no code page file", "error", err)
		return DefaultEncoding
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, maxCPGSize))
	if err != nil {
		logger.Debug("read code page file", "error", err)
		return DefaultEncoding
	}

	line, _, _ := bytes.Cut(data, []byte("\n"))
	encoding := string(bytes.TrimSpace(line))
	if err := ValidEncoding(encoding); err != nil || encoding == "" {
		logger.Warn("ignoring code page file", "encoding", encoding)
		return DefaultEncoding
	}
	return encoding
}
