package parser

import (
	"encoding/binary"
	"math"
	"slices"
)

// ShapeType identifies the structure of shapefile geometries.
//
// Reference: ESRI Shapefile Technical Description (1998), "Shape Types".
type ShapeType int32

const (
	ShapeNull        ShapeType = 0
	ShapePoint       ShapeType = 1
	ShapePolyLine    ShapeType = 3
	ShapePolygon     ShapeType = 5
	ShapeMultiPoint  ShapeType = 8
	ShapePointZ      ShapeType = 11
	ShapePolyLineZ   ShapeType = 13
	ShapePolygonZ    ShapeType = 15
	ShapeMultiPointZ ShapeType = 18
	ShapePointM      ShapeType = 21
	ShapePolyLineM   ShapeType = 23
	ShapePolygonM    ShapeType = 25
	ShapeMultiPointM ShapeType = 28
	ShapeMultiPatch  ShapeType = 31
)

// shapeTypeNames holds every valid shape type.
var shapeTypeNames = map[ShapeType]string{
	ShapeNull:        "Null",
	ShapePoint:       "Point",
	ShapePolyLine:    "PolyLine",
	ShapePolygon:     "Polygon",
	ShapeMultiPoint:  "MultiPoint",
	ShapePointZ:      "PointZ",
	ShapePolyLineZ:   "PolyLineZ",
	ShapePolygonZ:    "PolygonZ",
	ShapeMultiPointZ: "MultiPointZ",
	ShapePointM:      "PointM",
	ShapePolyLineM:   "PolyLineM",
	ShapePolygonM:    "PolygonM",
	ShapeMultiPointM: "MultiPointM",
	ShapeMultiPatch:  "MultiPatch",
}

// String returns the name of the shape type.
func (s ShapeType) String() string {
	if name, ok := shapeTypeNames[s]; ok {
		return name
	}
	return "Invalid"
}

// Valid reports whether s is one of the 14 shape types of the format.
func (s ShapeType) Valid() bool {
	_, ok := shapeTypeNames[s]
	return ok
}

// Geometry is a decoded shapefile record.
type Geometry interface {
	ShapeType() ShapeType
}

// Null is the empty geometry. Any shapefile may contain null records,
// whatever shape type its header declares.
type Null struct{}

// ShapeType implements Geometry.
func (Null) ShapeType() ShapeType { return ShapeNull }

// Point is a two-dimensional point.
type Point struct {
	X, Y float64
}

// ShapeType implements Geometry.
func (Point) ShapeType() ShapeType { return ShapePoint }

// DecodeFunc decodes the content of one record, after its shape type field.
// Content that does not fit the shape decodes to Null. The content slice is
// reused between records and must not be retained.
type DecodeFunc func(content []byte) Geometry

// geometryDecoders maps a file shape type to the decoder used for its
// non-null records. Shape types missing here are valid but unsupported.
var geometryDecoders = map[ShapeType]DecodeFunc{
	ShapeNull:  decodeNull,
	ShapePoint: decodePoint,
}

// lookupDecoder resolves the decoder for a file shape type.
func lookupDecoder(s ShapeType) (DecodeFunc, error) {
	if decode, ok := geometryDecoders[s]; ok {
		return decode, nil
	}
	if s.Valid() {
		return nil, &UnsupportedShapeTypeError{Code: s}
	}
	return nil, &InvalidShapeTypeError{Code: s}
}

// SupportedShapeTypes returns the shape types that can be decoded.
func SupportedShapeTypes() []ShapeType {
	types := make([]ShapeType, 0, len(geometryDecoders))
	for s := range shapeTypeNames {
		if _, ok := geometryDecoders[s]; ok {
			types = append(types, s)
		}
	}
	slices.Sort(types)
	return types
}

func decodeNull([]byte) Geometry {
	return Null{}
}

// decodePoint reads x then y as little-endian doubles.
func decodePoint(content []byte) Geometry {
	if len(content) != 16 {
		return Null{}
	}
	return Point{
		X: math.Float64frombits(binary.LittleEndian.Uint64(content[0:8])),
		Y: math.Float64frombits(binary.LittleEndian.Uint64(content[8:16])),
	}
}
