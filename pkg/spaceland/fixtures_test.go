package spaceland

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testField struct {
	name   string
	tag    byte
	length int
}

// testLayer describes a layer written to disk by writeLayer. A nil point is
// a null record.
type testLayer struct {
	name      string
	shapeType ShapeType
	points    []*Point
	fields    []testField
	rows      [][]string
	cpg       string
}

func pt(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

func encodeDBF(fields []testField, rows [][]string) []byte {
	recordLength := 1
	for _, f := range fields {
		recordLength += f.length
	}

	var buf bytes.Buffer
	header := make([]byte, 32)
	header[0] = 0x03
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(header[8:10], uint16(32+32*len(fields)+1))
	binary.LittleEndian.PutUint16(header[10:12], uint16(recordLength))
	buf.Write(header)

	for _, f := range fields {
		desc := make([]byte, 32)
		copy(desc[0:11], f.name)
		desc[11] = f.tag
		desc[16] = byte(f.length)
		buf.Write(desc)
	}
	buf.WriteByte(0x0D)

	for _, row := range rows {
		buf.WriteByte(' ')
		for i, f := range fields {
			v := row[i]
			buf.WriteString(v + strings.Repeat(" ", f.length-len(v)))
		}
	}
	buf.WriteByte(0x1A)
	return buf.Bytes()
}

func encodeSHP(shapeType ShapeType, points []*Point) []byte {
	var body bytes.Buffer
	var bounds Bounds
	first := true

	for i, p := range points {
		frame := make([]byte, 12)
		binary.BigEndian.PutUint32(frame[0:4], uint32(i+1))
		if p == nil {
			binary.BigEndian.PutUint32(frame[4:8], 2)
			binary.LittleEndian.PutUint32(frame[8:12], uint32(ShapeNull))
			body.Write(frame)
			continue
		}

		binary.BigEndian.PutUint32(frame[4:8], 10)
		binary.LittleEndian.PutUint32(frame[8:12], uint32(ShapePoint))
		body.Write(frame)

		content := make([]byte, 16)
		binary.LittleEndian.PutUint64(content[0:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(content[8:16], math.Float64bits(p.Y))
		body.Write(content)

		pb := Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		if first {
			bounds, first = pb, false
		} else {
			bounds = bounds.Union(pb)
		}
	}

	header := make([]byte, 100)
	binary.BigEndian.PutUint32(header[0:4], 9994)
	binary.BigEndian.PutUint32(header[24:28], uint32((100+body.Len())/2))
	binary.LittleEndian.PutUint32(header[28:32], 1000)
	binary.LittleEndian.PutUint32(header[32:36], uint32(int32(shapeType)))
	for i, v := range []float64{bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY} {
		binary.LittleEndian.PutUint64(header[36+8*i:44+8*i], math.Float64bits(v))
	}
	return append(header, body.Bytes()...)
}

// writeLayer writes the layer's .shp, and its .dbf and .cpg when it has
// fields or a code page. It returns the layer path without extension.
func writeLayer(t *testing.T, dir string, layer testLayer) string {
	t.Helper()

	base := filepath.Join(dir, filepath.FromSlash(layer.name))
	require.NoError(t, os.MkdirAll(filepath.Dir(base), 0o755))
	require.NoError(t, os.WriteFile(base+".shp", encodeSHP(layer.shapeType, layer.points), 0o644))
	if layer.fields != nil {
		require.NoError(t, os.WriteFile(base+".dbf", encodeDBF(layer.fields, layer.rows), 0o644))
	}
	if layer.cpg != "" {
		require.NoError(t, os.WriteFile(base+".cpg", []byte(layer.cpg), 0o644))
	}
	return base
}

var capitalFields = []testField{
	{name: "name", tag: 'C', length: 16},
	{name: "country", tag: 'C', length: 14},
}

// capitals are the EU capitals of 1995, in the order of eu1995.dbf.
func capitals() testLayer {
	return testLayer{
		name:      "europe/capitals",
		shapeType: ShapePoint,
		fields:    capitalFields,
		points: []*Point{
			pt(16.37, 48.21), pt(4.35, 50.85), pt(12.57, 55.68), pt(24.94, 60.17),
			pt(2.35, 48.86), pt(13.40, 52.52), pt(23.73, 37.98), pt(-6.26, 53.35),
			pt(12.50, 41.90), pt(6.13, 49.61), pt(4.90, 52.37), pt(-9.14, 38.72),
			pt(-3.70, 40.42), pt(18.07, 59.33), pt(-0.13, 51.51),
		},
		rows: [][]string{
			{"Vienna", "Austria"}, {"Brussels", "Belgium"}, {"Copenhagen", "Denmark"},
			{"Helsinki", "Finland"}, {"Paris", "France"}, {"Berlin", "Germany"},
			{"Athens", "Greece"}, {"Dublin", "Ireland"}, {"Rome", "Italy"},
			{"Luxembourg", "Luxembourg"}, {"Amsterdam", "Netherlands"}, {"Lisbon", "Portugal"},
			{"Madrid", "Spain"}, {"Stockholm", "Sweden"}, {"London", "United Kingdom"},
		},
	}
}
