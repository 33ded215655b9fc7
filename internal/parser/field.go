package parser

import (
	"bytes"
	"strings"
)

// FieldType is the decoded type of a table column.
type FieldType int

const (
	FieldText FieldType = iota + 1
	FieldInteger
	FieldFloat
	FieldDate
	FieldBoolean
)

// String returns the human-readable name of the field type.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "Text"
	case FieldInteger:
		return "Integer"
	case FieldFloat:
		return "Float"
	case FieldDate:
		return "Date"
	case FieldBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// FieldDescriptor describes one column of a dBase table.
//
// Descriptors appear in file order, and that order fixes the shape of every
// Record read from the table.
type FieldDescriptor struct {
	Name     string
	Type     FieldType
	Tag      byte // Type tag as stored in the file ('C', 'N', 'F', 'D', 'L')
	Length   int  // Width of the field in bytes
	Decimals int  // Digits after the decimal point (numeric fields)
}

// fieldClassifiers maps a descriptor type tag to the field type it declares.
// Numeric tags depend on the decimal count: any decimals make a float column.
//
// 'F' belongs to dBase IV rather than III, but shapefile writers use it.
var fieldClassifiers = map[byte]func(decimals int) FieldType{
	'C': func(int) FieldType { return FieldText },
	'N': classifyNumeric,
	'F': classifyNumeric,
	'D': func(int) FieldType { return FieldDate },
	'L': func(int) FieldType { return FieldBoolean },
}

func classifyNumeric(decimals int) FieldType {
	if decimals > 0 {
		return FieldFloat
	}
	return FieldInteger
}

// Field descriptor layout (32 bytes):
//
//	0-10  name, NUL padded
//	11    type tag
//	12-15 reserved
//	16    field length
//	17    decimal count
//	18-31 reserved
const (
	descriptorSize     = 32
	descriptorNameSize = 11
	descriptorTag      = 11
	descriptorLength   = 16
	descriptorDecimals = 17
)

// parseFieldDescriptor decodes a single 32-byte descriptor.
func parseFieldDescriptor(data []byte) (FieldDescriptor, error) {
	name := data[:descriptorNameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	field := FieldDescriptor{
		Name:     strings.TrimSpace(string(name)),
		Tag:      data[descriptorTag],
		Length:   int(data[descriptorLength]),
		Decimals: int(data[descriptorDecimals]),
	}

	classify, ok := fieldClassifiers[field.Tag]
	if !ok {
		return FieldDescriptor{}, &UnsupportedFieldTypeError{Field: field.Name, Tag: field.Tag}
	}
	field.Type = classify(field.Decimals)

	return field, nil
}
