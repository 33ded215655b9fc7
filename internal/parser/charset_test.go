package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCharset(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"ascii", []byte("plain"), "plain"},
		{"US-ASCII", []byte("plain"), "plain"},
		{"utf-8", []byte("G\xc3\xb6teborg"), "Göteborg"},
		{"UTF8", []byte("G\xc3\xb6teborg"), "Göteborg"},
		{"ISO-8859-1", []byte("G\xf6teborg"), "Göteborg"},
		{"latin1", []byte("G\xf6teborg"), "Göteborg"},
		{"windows-1252", []byte("\x80"), "€"},
		{"1252", []byte("\x80"), "€"},
		{"cp1252", []byte("\x80"), "€"},
		{"ANSI 1251", []byte("\xcf\xf0\xe8\xe2\xe5\xf2"), "Привет"},
		{"65001", []byte("\xc3\xa9"), "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := LookupCharset(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, cs.Name())

			got, ok := cs.Decode(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupCharsetDefault(t *testing.T) {
	cs, err := LookupCharset("  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultEncoding, cs.Name())

	_, ok := cs.Decode([]byte{0x80})
	assert.False(t, ok)
}

func TestLookupCharsetUnknown(t *testing.T) {
	for _, name := range []string{"eggs", "cp-spam", "utf-99"} {
		_, err := LookupCharset(name)
		var encErr *UnknownEncodingError
		require.ErrorAs(t, err, &encErr, name)
		assert.Equal(t, name, encErr.Name)
		assert.Contains(t, err.Error(), "unsupported encoding")
	}
}

func TestCharsetStrictDecoding(t *testing.T) {
	utf8, err := LookupCharset("utf-8")
	require.NoError(t, err)
	for _, raw := range [][]byte{{0xff}, {0xc3}, {0xe2, 0x82}} {
		_, ok := utf8.Decode(raw)
		assert.False(t, ok, "% x", raw)
	}
}
