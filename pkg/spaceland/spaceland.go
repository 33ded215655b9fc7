package spaceland

import (
	"github.com/beetlebugorg/spaceland/internal/parser"
)

// Attribute table types.
type (
	Table           = parser.Table
	Schema          = parser.Schema
	FieldDescriptor = parser.FieldDescriptor
	FieldType       = parser.FieldType
	Record          = parser.Record
	RecordCursor    = parser.RecordCursor
	Value           = parser.Value
)

// Field types.
const (
	FieldText    = parser.FieldText
	FieldInteger = parser.FieldInteger
	FieldFloat   = parser.FieldFloat
	FieldDate    = parser.FieldDate
	FieldBoolean = parser.FieldBoolean
)

// Geometry stream types.
type (
	Shapefile      = parser.Shapefile
	Header         = parser.Header
	BoundingBox    = parser.BoundingBox
	GeometryCursor = parser.GeometryCursor
	ShapeType      = parser.ShapeType
	Geometry       = parser.Geometry
	Point          = parser.Point
	Null           = parser.Null
)

// Shape types.
const (
	ShapeNull        = parser.ShapeNull
	ShapePoint       = parser.ShapePoint
	ShapePolyLine    = parser.ShapePolyLine
	ShapePolygon     = parser.ShapePolygon
	ShapeMultiPoint  = parser.ShapeMultiPoint
	ShapePointZ      = parser.ShapePointZ
	ShapePolyLineZ   = parser.ShapePolyLineZ
	ShapePolygonZ    = parser.ShapePolygonZ
	ShapeMultiPointZ = parser.ShapeMultiPointZ
	ShapePointM      = parser.ShapePointM
	ShapePolyLineM   = parser.ShapePolyLineM
	ShapePolygonM    = parser.ShapePolygonM
	ShapeMultiPointM = parser.ShapeMultiPointM
	ShapeMultiPatch  = parser.ShapeMultiPatch
)

// Errors. Inspect the struct types with errors.As and the sentinel with
// errors.Is.
type (
	UnsupportedFieldTypeError = parser.UnsupportedFieldTypeError
	CorruptHeaderError        = parser.CorruptHeaderError
	IndexOutOfRangeError      = parser.IndexOutOfRangeError
	InvalidIndexTypeError     = parser.InvalidIndexTypeError
	InvalidShapeTypeError     = parser.InvalidShapeTypeError
	UnsupportedShapeTypeError = parser.UnsupportedShapeTypeError
	ShapeTypeMismatchError    = parser.ShapeTypeMismatchError
	CorruptRecordError        = parser.CorruptRecordError
	UnknownEncodingError      = parser.UnknownEncodingError
)

// ErrUnexpectedEndOfStream reports a stream that ends inside a header or record.
var ErrUnexpectedEndOfStream = parser.ErrUnexpectedEndOfStream

// DefaultEncoding is the dBase III attribute encoding used when none is known.
const DefaultEncoding = parser.DefaultEncoding

// SupportedShapeTypes returns the shape types whose records can be decoded.
func SupportedShapeTypes() []ShapeType {
	return parser.SupportedShapeTypes()
}

// ValidEncoding reports whether name is a supported attribute encoding. It
// returns *UnknownEncodingError otherwise.
func ValidEncoding(name string) error {
	_, err := parser.LookupCharset(name)
	return err
}
