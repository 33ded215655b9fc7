package parser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
)

// Shapefile header layout (100 bytes):
//
//	0-23  file code and unused words (big-endian)
//	24-27 file length in 16-bit words (big-endian)
//	28-31 version (little-endian)
//	32-35 shape type (little-endian int32)
//	36-99 Xmin, Ymin, Xmax, Ymax, Zmin, Zmax, Mmin, Mmax (little-endian float64)
//
// Each record starts with a 12-byte frame: record number and content length
// (big-endian, content length in 16-bit words), then the record's own shape
// type (little-endian).
const (
	shapefileHeaderSize = 100
	recordFrameSize     = 12
)

// BoundingBox is the extent declared in a shapefile header.
type BoundingBox struct {
	XMin, YMin, XMax, YMax float64
	ZMin, ZMax             float64
	MMin, MMax             float64
}

// Header is the metadata read from a shapefile header.
type Header struct {
	ShapeType ShapeType
	BBox      BoundingBox

	// FileLength is the total file size in bytes as declared by the header.
	// It is informational; records are read until the stream ends.
	FileLength int64
}

// ShapefileOptions configures how a shapefile is opened.
type ShapefileOptions struct {
	// Strict rejects non-null records whose own shape type differs from the
	// header's. By default such records are decoded as the header's type and
	// logged at warn level.
	Strict bool

	// Logger receives debug and warning output. Nil disables logging.
	Logger *slog.Logger
}

// Shapefile reads geometries from an ESRI shapefile (.shp).
//
// A Shapefile owns its stream until Close. Only one cursor may be used at a
// time: each call to Records repositions the shared stream.
type Shapefile struct {
	r      io.ReadSeekCloser
	header Header
	strict bool
	logger *slog.Logger
}

// NewShapefile parses the 100-byte header from r.
//
// The shape type is not checked here; unknown or unsupported types are
// reported by Records. The stream is closed when the header cannot be read.
func NewShapefile(r io.ReadSeekCloser, opts ShapefileOptions) (s *Shapefile, err error) {
	defer func() {
		if err != nil {
			_ = r.Close()
		}
	}()

	header, err := readShapefileHeader(r)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("shapefile opened",
		"shape_type", header.ShapeType.String(),
		"file_length", header.FileLength)

	return &Shapefile{
		r:      r,
		header: header,
		strict: opts.Strict,
		logger: logger,
	}, nil
}

func readShapefileHeader(r io.ReadSeeker) (Header, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Header{}, fmt.Errorf("seek header: %w", err)
	}

	buf := make([]byte, shapefileHeaderSize)
	if err := readFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}

	f64 := func(off int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(buf[off : off+8]))
	}

	return Header{
		FileLength: 2 * int64(binary.BigEndian.Uint32(buf[24:28])),
		ShapeType:  ShapeType(int32(binary.LittleEndian.Uint32(buf[32:36]))),
		BBox: BoundingBox{
			XMin: f64(36),
			YMin: f64(44),
			XMax: f64(52),
			YMax: f64(60),
			ZMin: f64(68),
			ZMax: f64(76),
			MMin: f64(84),
			MMax: f64(92),
		},
	}, nil
}

// Header returns the file metadata.
func (s *Shapefile) Header() Header {
	return s.header
}

// ShapeType returns the shape type declared by the header.
func (s *Shapefile) ShapeType() ShapeType {
	return s.header.ShapeType
}

// Close releases the underlying stream.
func (s *Shapefile) Close() error {
	return s.r.Close()
}

// Records returns a cursor over every record in the file, starting from the
// first. Each call seeks afresh, so calling it again restarts iteration.
//
// It fails with *InvalidShapeTypeError or *UnsupportedShapeTypeError before
// any record is read when the header's shape type cannot be decoded.
func (s *Shapefile) Records() (*GeometryCursor, error) {
	decode, err := lookupDecoder(s.header.ShapeType)
	if err != nil {
		return nil, err
	}
	if _, err := s.r.Seek(shapefileHeaderSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek records: %w", err)
	}
	return &GeometryCursor{
		shp:    s,
		decode: decode,
		offset: shapefileHeaderSize,
	}, nil
}

// All iterates over every geometry in the file. Iteration stops at the first
// error, which is yielded with a nil Geometry.
func (s *Shapefile) All() iter.Seq2[Geometry, error] {
	return func(yield func(Geometry, error) bool) {
		cursor, err := s.Records()
		if err != nil {
			yield(nil, err)
			return
		}
		for {
			geom, err := cursor.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(geom, err) || err != nil {
				return
			}
		}
	}
}

// GeometryCursor produces shapefile geometries one at a time.
type GeometryCursor struct {
	shp     *Shapefile
	decode  DecodeFunc
	index   int   // Index of the next record
	offset  int64 // Byte offset of the next record frame
	frame   [recordFrameSize]byte
	content bytes.Buffer
	done    bool
}

// Next decodes the next geometry. It returns io.EOF when the stream ends
// cleanly on a record boundary, and an error wrapping
// ErrUnexpectedEndOfStream when it ends inside a record.
func (c *GeometryCursor) Next() (Geometry, error) {
	if c.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(c.shp.r, c.frame[:])
	if n == 0 && errors.Is(err, io.EOF) {
		c.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, c.fail(err)
	}

	contentLength := int32(binary.BigEndian.Uint32(c.frame[4:8]))
	recordType := ShapeType(int32(binary.LittleEndian.Uint32(c.frame[8:12])))
	c.offset += recordFrameSize

	if recordType == ShapeNull {
		c.index++
		return Null{}, nil
	}

	if contentLength < 2 {
		c.done = true
		return nil, &CorruptRecordError{
			Record: c.index,
			Reason: fmt.Sprintf("content length %d words is shorter than the record frame", contentLength),
		}
	}

	if declared := c.shp.header.ShapeType; recordType != declared {
		if c.shp.strict {
			c.done = true
			return nil, &ShapeTypeMismatchError{Record: c.index, Declared: declared, Found: recordType}
		}
		c.shp.logger.Warn("record shape type differs from file shape type",
			"record", c.index,
			"shape_type", recordType.String(),
			"file_shape_type", declared.String())
	}

	// The content length is untrusted, so the buffer grows only with the
	// bytes actually read.
	size := 2 * (int64(contentLength) - 2)
	c.content.Reset()
	if _, err := io.CopyN(&c.content, c.shp.r, size); err != nil {
		return nil, c.fail(err)
	}

	c.offset += size
	c.index++
	return c.decode(c.content.Bytes()), nil
}

// fail stops the cursor and maps short reads to ErrUnexpectedEndOfStream.
func (c *GeometryCursor) fail(err error) error {
	c.done = true
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrUnexpectedEndOfStream
	}
	return fmt.Errorf("record %d at offset %d: %w", c.index, c.offset, err)
}

// Index returns the index of the record the next call to Next will decode.
func (c *GeometryCursor) Index() int {
	return c.index
}
