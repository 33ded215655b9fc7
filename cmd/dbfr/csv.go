package main

import (
	"bufio"
	"io"
	"strings"
)

// dialect describes the CSV flavour written by csvWriter.
type dialect struct {
	Delimiter rune
	Quote     rune

	// Escape precedes quote and escape characters wherever they appear.
	// When zero, quote characters are doubled inside quoted fields instead.
	Escape rune

	// QuoteAll quotes every field. Otherwise fields are quoted only when
	// they contain the delimiter or a line break, or a quote character
	// when there is no escape.
	QuoteAll bool

	LineTerminator string
}

func defaultDialect() dialect {
	return dialect{Delimiter: ',', Quote: '"', LineTerminator: "\n"}
}

// csvWriter writes records in a configurable dialect.
type csvWriter struct {
	w *bufio.Writer
	d dialect
}

func newCSVWriter(w io.Writer, d dialect) *csvWriter {
	return &csvWriter{w: bufio.NewWriter(w), d: d}
}

// Write writes one record followed by the line terminator.
func (c *csvWriter) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if _, err := c.w.WriteRune(c.d.Delimiter); err != nil {
				return err
			}
		}

		// A lone empty field is quoted so the line is not mistaken for
		// an empty record.
		quoted := c.d.QuoteAll || c.needsQuotes(field) || (len(record) == 1 && field == "")
		if err := c.writeField(field, quoted); err != nil {
			return err
		}
	}
	_, err := c.w.WriteString(c.d.LineTerminator)
	return err
}

// Flush writes any buffered data to the underlying writer.
func (c *csvWriter) Flush() error {
	return c.w.Flush()
}

// needsQuotes reports whether field must be quoted. With an escape character
// set, quote and escape characters are escaped in place and do not force
// quoting.
func (c *csvWriter) needsQuotes(field string) bool {
	return strings.ContainsFunc(field, func(r rune) bool {
		return r == c.d.Delimiter || r == '\r' || r == '\n' ||
			(c.d.Escape == 0 && r == c.d.Quote)
	})
}

func (c *csvWriter) writeField(field string, quoted bool) error {
	var b strings.Builder
	b.Grow(len(field) + 2)
	if quoted {
		b.WriteRune(c.d.Quote)
	}
	for _, r := range field {
		switch {
		case r == c.d.Quote && c.d.Escape == 0:
			b.WriteRune(c.d.Quote)
		case r == c.d.Quote, c.d.Escape != 0 && r == c.d.Escape:
			b.WriteRune(c.d.Escape)
		}
		b.WriteRune(r)
	}
	if quoted {
		b.WriteRune(c.d.Quote)
	}

	_, err := c.w.WriteString(b.String())
	return err
}
