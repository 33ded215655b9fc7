package parser

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
)

// memFile is an in-memory io.ReadSeekCloser that records Close calls.
type memFile struct {
	*bytes.Reader
	closed bool
}

func newMemFile(data []byte) *memFile {
	return &memFile{Reader: bytes.NewReader(data)}
}

func (m *memFile) Close() error {
	m.closed = true
	return nil
}

type testField struct {
	name     string
	tag      byte
	length   int
	decimals int
}

type testRow struct {
	values  []string
	deleted bool
}

// buildTable encodes a dBase III table. Values are space padded to the field
// width; longer values are cut.
func buildTable(fields []testField, rows []testRow) []byte {
	recordLength := 1
	for _, f := range fields {
		recordLength += f.length
	}
	headerLength := 32 + 32*len(fields) + 1

	var buf bytes.Buffer
	header := make([]byte, 32)
	header[0] = 0x03
	header[1], header[2], header[3] = 95, 1, 1
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(header[8:10], uint16(headerLength))
	binary.LittleEndian.PutUint16(header[10:12], uint16(recordLength))
	buf.Write(header)

	for _, f := range fields {
		desc := make([]byte, 32)
		copy(desc[0:11], f.name)
		desc[11] = f.tag
		desc[16] = byte(f.length)
		desc[17] = byte(f.decimals)
		buf.Write(desc)
	}
	buf.WriteByte(headerTerminator)

	for _, row := range rows {
		if row.deleted {
			buf.WriteByte(deletedFlag)
		} else {
			buf.WriteByte(' ')
		}
		for i, f := range fields {
			v := row.values[i]
			if len(v) > f.length {
				v = v[:f.length]
			}
			buf.WriteString(v + strings.Repeat(" ", f.length-len(v)))
		}
	}
	buf.WriteByte(0x1A)

	return buf.Bytes()
}

var euFields = []testField{
	{name: "country", tag: 'C', length: 14},
	{name: "since", tag: 'D', length: 8},
	{name: "area", tag: 'N', length: 6},
	{name: "pop_density", tag: 'N', length: 6, decimals: 3},
	{name: "founder", tag: 'L', length: 1},
}

var euRows = []testRow{
	{values: []string{"Austria", "19950101", "83855", "103.76", "F"}},
	{values: []string{"Belgium", "19580101", "30528", "331.37", "T"}},
	{values: []string{"Denmark", "19730101", "43094", "121.18", "F"}},
	{values: []string{"Finland", "19950101", "338145", "15.08", "F"}},
	{values: []string{"France", "19580101", "543965", "106.48", "T"}},
	{values: []string{"Germany", "19580101", "356854", "228.98", "T"}},
	{values: []string{"Greece", "19810101", "131957", "79.09", "F"}},
	{values: []string{"Ireland", "19730101", "70273", "51.14", "F"}},
	{values: []string{"Italy", "19580101", "301338", "189.45", "T"}},
	{values: []string{"Luxembourg", "19580101", "2586", "157.31", "T"}},
	{values: []string{"Netherlands", "19580101", "41526", "373.82", "T"}},
	{values: []string{"Portugal", "19860101", "92389", "107.39", "F"}},
	{values: []string{"Spain", "19860101", "504782", "77.79", "F"}},
	{values: []string{"Sweden", "19950101", "449964", "21.89", "F"}},
	{values: []string{"United Kingdom", "19730101", "243610", "268.22", "F"}},
}

func euTable() []byte {
	return buildTable(euFields, euRows)
}

type testShape struct {
	shapeType ShapeType
	content   []byte
	// contentLength overrides the computed content length when non-zero
	contentLength int32
}

func pointContent(x, y float64) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(b[8:16], math.Float64bits(y))
	return b
}

func nullShape() testShape {
	return testShape{shapeType: ShapeNull}
}

func pointShape(x, y float64) testShape {
	return testShape{shapeType: ShapePoint, content: pointContent(x, y)}
}

// buildShapefile encodes a shapefile with the given declared type and records.
func buildShapefile(fileType ShapeType, bbox [8]float64, records []testShape) []byte {
	var body bytes.Buffer
	for i, rec := range records {
		frame := make([]byte, 12)
		contentLength := rec.contentLength
		if contentLength == 0 {
			contentLength = int32(2 + len(rec.content)/2)
		}
		binary.BigEndian.PutUint32(frame[0:4], uint32(i+1))
		binary.BigEndian.PutUint32(frame[4:8], uint32(contentLength))
		binary.LittleEndian.PutUint32(frame[8:12], uint32(int32(rec.shapeType)))
		body.Write(frame)
		body.Write(rec.content)
	}

	header := make([]byte, shapefileHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], 9994)
	binary.BigEndian.PutUint32(header[24:28], uint32((shapefileHeaderSize+body.Len())/2))
	binary.LittleEndian.PutUint32(header[28:32], 1000)
	binary.LittleEndian.PutUint32(header[32:36], uint32(int32(fileType)))
	for i, v := range bbox {
		binary.LittleEndian.PutUint64(header[36+8*i:44+8*i], math.Float64bits(v))
	}

	return append(header, body.Bytes()...)
}
