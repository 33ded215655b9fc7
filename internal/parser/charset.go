package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is used for text fields when the caller names no encoding.
// dBase III predates code pages, so plain 7-bit ASCII is the only safe default.
const DefaultEncoding = "ascii"

// Charset decodes the raw bytes of text fields.
//
// Decoding is strict: any byte sequence the encoding cannot map is reported
// as undecodable instead of being replaced, so callers can turn it into null.
type Charset struct {
	name   string
	decode func([]byte) (string, bool)
}

// Name returns the encoding name the charset was looked up with.
func (c *Charset) Name() string {
	return c.name
}

// Decode converts raw field bytes to a string. ok is false when the bytes
// are not valid in the charset's encoding.
func (c *Charset) Decode(raw []byte) (s string, ok bool) {
	return c.decode(raw)
}

// LookupCharset resolves an encoding name to a Charset.
//
// Names are matched case-insensitively. Besides IANA and WHATWG labels the
// lookup accepts code page numbers as found in .cpg sidecar files ("1252",
// "cp1252", "ANSI 1252"), which map to the matching windows-NNNN encoding.
func LookupCharset(name string) (*Charset, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}
	label := normalizeLabel(name)

	switch label {
	case "ascii", "us-ascii", "us", "646", "iso646-us", "ansi_x3.4-1968":
		return &Charset{name: name, decode: decodeASCII}, nil
	case "utf-8", "utf8", "u8":
		return &Charset{name: name, decode: decodeUTF8}, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(label)
		if err != nil || enc == nil {
			return nil, &UnknownEncodingError{Name: name}
		}
	}
	return &Charset{name: name, decode: decodeWith(enc)}, nil
}

// normalizeLabel lowercases an encoding name and rewrites code page forms.
func normalizeLabel(name string) string {
	label := strings.ToLower(strings.TrimSpace(name))
	page := strings.TrimPrefix(strings.TrimPrefix(label, "ansi "), "cp")
	if !isDigits(page) {
		return label
	}
	switch page {
	case "65001":
		return "utf-8"
	case "437", "850", "852", "855", "858", "860", "862", "863", "865", "866":
		return "ibm" + page
	}
	return "windows-" + page
}

func decodeASCII(raw []byte) (string, bool) {
	for _, b := range raw {
		if b >= utf8.RuneSelf {
			return "", false
		}
	}
	return string(raw), true
}

func decodeUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

func decodeWith(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(raw []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		// x/text decoders substitute unmappable bytes
		if strings.ContainsRune(string(out), utf8.RuneError) {
			return "", false
		}
		return string(out), true
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
