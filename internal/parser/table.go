package parser

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Table header layout (32 bytes, little-endian):
//
//	0-3   version and last update date (ignored)
//	4-7   record count (uint32)
//	8-9   header length (uint16)
//	10-11 record length (uint16)
//	12-31 reserved
const (
	tableHeaderSize = 32

	// headerTerminator closes the descriptor array
	headerTerminator = 0x0D

	// deletedFlag marks a soft-deleted record in its first byte
	deletedFlag = '*'
)

// TableOptions configures how a table is opened.
type TableOptions struct {
	// Encoding names the character encoding of text fields.
	// Empty means DefaultEncoding.
	Encoding string

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// Schema is the metadata read from a table header.
type Schema struct {
	Fields       []FieldDescriptor
	NumRecords   int
	HeaderLength int // Offset of the first record
	RecordLength int // Record stride, including the deletion flag byte
	Encoding     string
}

// Record holds the decoded values of one table row, one per field and in
// field order. Its length always equals the number of fields.
type Record []Value

// Table reads records from a dBase III table.
//
// A Table owns its stream until Close. Sequential cursors and random access
// both reposition the stream, so a Table must not be shared between
// goroutines; open one Table per concurrent reader instead.
type Table struct {
	r        io.ReadSeekCloser
	schema   Schema
	decoders []valueDecoder
	logger   *slog.Logger
}

// NewTable parses the table header and field descriptors from r.
//
// The stream is closed when the header cannot be parsed; on success the
// returned Table owns it.
func NewTable(r io.ReadSeekCloser, opts TableOptions) (t *Table, err error) {
	defer func() {
		if err != nil {
			_ = r.Close()
		}
	}()

	charset, err := LookupCharset(opts.Encoding)
	if err != nil {
		return nil, err
	}

	schema, err := readSchema(r)
	if err != nil {
		return nil, err
	}
	schema.Encoding = charset.Name()

	decoders := make([]valueDecoder, len(schema.Fields))
	for i, field := range schema.Fields {
		decoders[i] = decoderFor(field.Type, charset)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("table opened",
		"records", schema.NumRecords,
		"fields", len(schema.Fields),
		"record_length", schema.RecordLength,
		"encoding", schema.Encoding)

	return &Table{
		r:        r,
		schema:   schema,
		decoders: decoders,
		logger:   logger,
	}, nil
}

// readSchema reads the fixed header and the descriptor array.
func readSchema(r io.ReadSeeker) (Schema, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Schema{}, fmt.Errorf("seek header: %w", err)
	}

	header := make([]byte, tableHeaderSize)
	if err := readFull(r, header); err != nil {
		return Schema{}, fmt.Errorf("read header: %w", err)
	}

	schema := Schema{
		NumRecords:   int(binary.LittleEndian.Uint32(header[4:8])),
		HeaderLength: int(binary.LittleEndian.Uint16(header[8:10])),
		RecordLength: int(binary.LittleEndian.Uint16(header[10:12])),
	}

	// Descriptors sit between the 32-byte header and the 1-byte terminator.
	count := 0
	if n := schema.HeaderLength - tableHeaderSize - 1; n > 0 {
		count = (n + descriptorSize - 1) / descriptorSize
	}

	buf := make([]byte, descriptorSize)
	width := 1
	for i := 0; i < count; i++ {
		if err := readFull(r, buf[:1]); err != nil {
			return Schema{}, fmt.Errorf("read field %d: %w", i, err)
		}
		// Some writers pad the header past the descriptors
		if buf[0] == headerTerminator {
			break
		}
		if err := readFull(r, buf[1:]); err != nil {
			return Schema{}, fmt.Errorf("read field %d: %w", i, err)
		}

		field, err := parseFieldDescriptor(buf)
		if err != nil {
			return Schema{}, err
		}
		schema.Fields = append(schema.Fields, field)
		width += field.Length
	}

	if width > schema.RecordLength {
		return Schema{}, &CorruptHeaderError{
			Reason: fmt.Sprintf("fields need %d bytes per record, header declares %d", width, schema.RecordLength),
		}
	}

	return schema, nil
}

// Schema returns the table metadata.
func (t *Table) Schema() Schema {
	return t.schema
}

// Fields returns the field descriptors in file order.
func (t *Table) Fields() []FieldDescriptor {
	return t.schema.Fields
}

// Len returns the number of records declared in the header.
func (t *Table) Len() int {
	return t.schema.NumRecords
}

// FieldIndex returns the position of the named field, or -1.
func (t *Table) FieldIndex(name string) int {
	for i, f := range t.schema.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Close releases the underlying stream.
func (t *Table) Close() error {
	return t.r.Close()
}

// offset returns the byte offset of record index.
func (t *Table) offset(index int) int64 {
	return int64(t.schema.HeaderLength) + int64(index)*int64(t.schema.RecordLength)
}

// Records returns a cursor over the records from start to the end of the
// table. Each call seeks afresh, so calling it again restarts iteration.
func (t *Table) Records(start int) (*RecordCursor, error) {
	if start < 0 || start > t.schema.NumRecords {
		return nil, &IndexOutOfRangeError{Index: start, Len: t.schema.NumRecords}
	}
	offset := t.offset(start)
	if _, err := t.r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek record %d: %w", start, err)
	}
	return &RecordCursor{
		table:     t,
		index:     start,
		offset:    offset,
		remaining: t.schema.NumRecords - start,
		buf:       make([]byte, t.schema.RecordLength),
	}, nil
}

// All iterates over every record in the table. Iteration stops at the first
// error, which is yielded with a nil Record.
func (t *Table) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		cursor, err := t.Records(0)
		if err != nil {
			yield(nil, err)
			return
		}
		for {
			rec, err := cursor.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Record returns the record at index. Negative indexes count back from the
// end of the table, so -1 is the last record.
func (t *Table) Record(index int) (Record, error) {
	abs := index
	if abs < 0 {
		abs += t.schema.NumRecords
	}
	if abs < 0 || abs >= t.schema.NumRecords {
		return nil, &IndexOutOfRangeError{Index: index, Len: t.schema.NumRecords}
	}

	if _, err := t.r.Seek(t.offset(abs), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek record %d: %w", abs, err)
	}
	buf := make([]byte, t.schema.RecordLength)
	if err := readFull(t.r, buf); err != nil {
		return nil, fmt.Errorf("record %d: %w", abs, err)
	}
	return t.decode(buf), nil
}

// Get is Record for keys of any integer type. Other key types fail with
// *InvalidIndexTypeError.
func (t *Table) Get(key any) (Record, error) {
	var index int
	switch k := key.(type) {
	case int:
		index = k
	case int8:
		index = int(k)
	case int16:
		index = int(k)
	case int32:
		index = int(k)
	case int64:
		index = int(k)
	case uint:
		index = clampIndex(uint64(k))
	case uint8:
		index = int(k)
	case uint16:
		index = int(k)
	case uint32:
		index = int(k)
	case uint64:
		index = clampIndex(k)
	default:
		return nil, &InvalidIndexTypeError{Key: key}
	}
	return t.Record(index)
}

// clampIndex converts an unsigned key, saturating at math.MaxInt so that
// huge keys stay out of range instead of wrapping negative.
func clampIndex(k uint64) int {
	if k > math.MaxInt {
		return math.MaxInt
	}
	return int(k)
}

// Deleted returns the indexes of records whose deletion flag is set.
//
// Deleted records are still returned by Records and Record; the flag is
// only reported here.
func (t *Table) Deleted() (*roaring.Bitmap, error) {
	deleted := roaring.New()
	if t.schema.NumRecords == 0 {
		return deleted, nil
	}
	if _, err := t.r.Seek(t.offset(0), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek records: %w", err)
	}

	buf := make([]byte, t.schema.RecordLength)
	for i := 0; i < t.schema.NumRecords; i++ {
		if err := readFull(t.r, buf); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if buf[0] == deletedFlag {
			deleted.Add(uint32(i))
		}
	}

	t.logger.Debug("deletion flags scanned", "records", t.schema.NumRecords, "deleted", deleted.GetCardinality())
	return deleted, nil
}

// decode splits a raw record into field slices and decodes each one.
func (t *Table) decode(raw []byte) Record {
	rec := make(Record, len(t.schema.Fields))
	pos := 1 // deletion flag
	for i, field := range t.schema.Fields {
		rec[i] = t.decoders[i](raw[pos : pos+field.Length])
		pos += field.Length
	}
	return rec
}

// RecordCursor produces table records one at a time.
type RecordCursor struct {
	table     *Table
	index     int   // Index of the next record
	offset    int64 // Byte offset of the next record
	remaining int
	buf       []byte
}

// Next decodes the next record. It returns io.EOF once every record has been
// produced, and an error wrapping ErrUnexpectedEndOfStream when the table
// data is shorter than the header declares.
func (c *RecordCursor) Next() (Record, error) {
	if c.remaining <= 0 {
		return nil, io.EOF
	}
	// The table's stream is shared with Record, so position it explicitly.
	if _, err := c.table.r.Seek(c.offset, io.SeekStart); err != nil {
		c.remaining = 0
		return nil, fmt.Errorf("seek record %d: %w", c.index, err)
	}
	if err := readFull(c.table.r, c.buf); err != nil {
		c.remaining = 0
		return nil, fmt.Errorf("record %d: %w", c.index, err)
	}

	rec := c.table.decode(c.buf)
	c.index++
	c.offset += int64(len(c.buf))
	c.remaining--
	return rec, nil
}

// Index returns the index of the record the next call to Next will decode.
func (c *RecordCursor) Index() int {
	return c.index
}

// readFull fills buf from r. Any short read, including one of zero bytes,
// becomes ErrUnexpectedEndOfStream.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrUnexpectedEndOfStream
		}
		return err
	}
	return nil
}
