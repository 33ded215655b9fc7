package parser

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// Value is a single decoded field value.
//
// Any value may be null, whatever its field type: null marks bytes that could
// not be decoded as the declared type. Only the accessor matching Type returns
// a meaningful result.
type Value struct {
	Type  FieldType
	Valid bool

	str   string
	num   int64
	float float64
	date  time.Time
	flag  bool
}

// NullValue returns a null value of the given field type.
func NullValue(t FieldType) Value {
	return Value{Type: t}
}

// TextValue returns a non-null text value.
func TextValue(s string) Value {
	return Value{Type: FieldText, Valid: true, str: s}
}

// IntegerValue returns a non-null integer value.
func IntegerValue(n int64) Value {
	return Value{Type: FieldInteger, Valid: true, num: n}
}

// FloatValue returns a non-null float value.
func FloatValue(f float64) Value {
	return Value{Type: FieldFloat, Valid: true, float: f}
}

// DateValue returns a non-null date value at UTC midnight.
func DateValue(year int, month time.Month, day int) Value {
	return Value{Type: FieldDate, Valid: true, date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// BooleanValue returns a non-null boolean value.
func BooleanValue(b bool) Value {
	return Value{Type: FieldBoolean, Valid: true, flag: b}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return !v.Valid }

// Text returns the string of a non-null text value.
func (v Value) Text() (string, bool) { return v.str, v.Valid && v.Type == FieldText }

// Integer returns the number of a non-null integer value.
func (v Value) Integer() (int64, bool) { return v.num, v.Valid && v.Type == FieldInteger }

// Float returns the number of a non-null float value.
func (v Value) Float() (float64, bool) { return v.float, v.Valid && v.Type == FieldFloat }

// Date returns the date of a non-null date value, at UTC midnight.
func (v Value) Date() (time.Time, bool) { return v.date, v.Valid && v.Type == FieldDate }

// Boolean returns the flag of a non-null boolean value.
func (v Value) Boolean() (bool, bool) { return v.flag, v.Valid && v.Type == FieldBoolean }

// Interface returns the value as string, int64, float64, time.Time or bool,
// or nil when null.
func (v Value) Interface() any {
	if !v.Valid {
		return nil
	}
	switch v.Type {
	case FieldText:
		return v.str
	case FieldInteger:
		return v.num
	case FieldFloat:
		return v.float
	case FieldDate:
		return v.date
	case FieldBoolean:
		return v.flag
	}
	return nil
}

// String formats the value for text output. Null formats as "".
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	switch v.Type {
	case FieldText:
		return v.str
	case FieldInteger:
		return strconv.FormatInt(v.num, 10)
	case FieldFloat:
		return strconv.FormatFloat(v.float, 'f', -1, 64)
	case FieldDate:
		return v.date.Format(time.DateOnly)
	case FieldBoolean:
		return strconv.FormatBool(v.flag)
	}
	return ""
}

// valueDecoder turns the raw bytes of one field into a Value. Decoders never
// fail: anything they cannot decode becomes null.
type valueDecoder func(raw []byte) Value

// valueDecoders holds the charset-independent decoders by field type.
var valueDecoders = map[FieldType]valueDecoder{
	FieldInteger: decodeInteger,
	FieldFloat:   decodeFloat,
	FieldDate:    decodeDate,
	FieldBoolean: decodeBoolean,
}

// decoderFor returns the decoder for a field type. Text is bound to the
// table's charset.
func decoderFor(t FieldType, cs *Charset) valueDecoder {
	if t == FieldText {
		return func(raw []byte) Value { return decodeText(raw, cs) }
	}
	if dec, ok := valueDecoders[t]; ok {
		return dec
	}
	return func([]byte) Value { return NullValue(t) }
}

func decodeText(raw []byte, cs *Charset) Value {
	s, ok := cs.Decode(raw)
	if !ok {
		return NullValue(FieldText)
	}
	return TextValue(strings.TrimSpace(s))
}

func decodeInteger(raw []byte) Value {
	n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64)
	if err != nil {
		return NullValue(FieldInteger)
	}
	return IntegerValue(n)
}

func decodeFloat(raw []byte) Value {
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil {
		return NullValue(FieldFloat)
	}
	return FloatValue(f)
}

// decodeDate reads YYYYMMDD. time.Date normalizes overflowing components, so
// the result is compared back against its inputs to reject dates like
// 19951301 or 19950230.
func decodeDate(raw []byte) Value {
	if len(raw) != 8 || !isDigits(string(raw)) {
		return NullValue(FieldDate)
	}
	year, _ := strconv.Atoi(string(raw[0:4]))
	month, _ := strconv.Atoi(string(raw[4:6]))
	day, _ := strconv.Atoi(string(raw[6:8]))

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if year < 1 || t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return NullValue(FieldDate)
	}
	return Value{Type: FieldDate, Valid: true, date: t}
}

func decodeBoolean(raw []byte) Value {
	if len(raw) != 1 {
		return NullValue(FieldBoolean)
	}
	switch raw[0] {
	case 'Y', 'y', 'T', 't':
		return BooleanValue(true)
	case 'N', 'n', 'F', 'f':
		return BooleanValue(false)
	}
	return NullValue(FieldBoolean)
}
