package parser

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEndOfStream indicates the stream ended inside a header, record,
// record frame or record payload.
var ErrUnexpectedEndOfStream = errors.New("unexpected end of stream")

// UnsupportedFieldTypeError indicates a field descriptor with an unknown type tag
type UnsupportedFieldTypeError struct {
	Field string
	Tag   byte
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("field %q: unsupported field type %q", e.Field, e.Tag)
}

// CorruptHeaderError indicates a table header whose lengths are inconsistent
type CorruptHeaderError struct {
	Reason string
}

func (e *CorruptHeaderError) Error() string {
	return fmt.Sprintf("corrupt header: %s", e.Reason)
}

// IndexOutOfRangeError indicates a record index outside [-Len, Len)
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("record index %d out of range [0, %d)", e.Index, e.Len)
}

// InvalidIndexTypeError indicates a record key that is not an integer
type InvalidIndexTypeError struct {
	Key any
}

func (e *InvalidIndexTypeError) Error() string {
	return fmt.Sprintf("record indexes must be integers, not %T", e.Key)
}

// InvalidShapeTypeError indicates a shape type code outside the known set
type InvalidShapeTypeError struct {
	Code ShapeType
}

func (e *InvalidShapeTypeError) Error() string {
	return fmt.Sprintf("invalid shape type %d", int32(e.Code))
}

// UnsupportedShapeTypeError indicates a known shape type without a registered decoder
type UnsupportedShapeTypeError struct {
	Code ShapeType
}

func (e *UnsupportedShapeTypeError) Error() string {
	return fmt.Sprintf("shape type %v (%d) not supported", e.Code, int32(e.Code))
}

// ShapeTypeMismatchError indicates a record whose own shape type is neither
// null nor the type declared in the file header.
type ShapeTypeMismatchError struct {
	Record   int
	Declared ShapeType
	Found    ShapeType
}

func (e *ShapeTypeMismatchError) Error() string {
	return fmt.Sprintf("record %d: shape type %v does not match file shape type %v",
		e.Record, e.Found, e.Declared)
}

// CorruptRecordError indicates a geometry record frame that cannot be followed
type CorruptRecordError struct {
	Record int
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record %d: %s", e.Record, e.Reason)
}

// UnknownEncodingError indicates a character encoding name that cannot be resolved
type UnknownEncodingError struct {
	Name string
}

func (e *UnknownEncodingError) Error() string {
	return fmt.Sprintf("unsupported encoding %q", e.Name)
}
