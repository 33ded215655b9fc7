package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testField struct {
	name     string
	tag      byte
	length   int
	decimals int
}

var memberFields = []testField{
	{name: "country", tag: 'C', length: 14},
	{name: "since", tag: 'D', length: 8},
	{name: "area", tag: 'N', length: 7},
	{name: "pop_densit", tag: 'N', length: 7, decimals: 2},
	{name: "founder", tag: 'L', length: 1},
}

var memberRows = [][]string{
	{"Austria", "19950101", "83855", "103.76", "F"},
	{"Belgium", "19570325", "30528", "336.59", "T"},
	{"Sweden", "19950101", "449964", "21.89", "F"},
	{"", "", "", "", " "},
}

// encodeDBF builds a dBase III table. Character fields are left aligned,
// numbers right aligned.
func encodeDBF(fields []testField, rows [][]string) []byte {
	recordLength := 1
	for _, f := range fields {
		recordLength += f.length
	}

	header := make([]byte, 32)
	header[0] = 0x03
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(header[8:10], uint16(32+32*len(fields)+1))
	binary.LittleEndian.PutUint16(header[10:12], uint16(recordLength))

	var buf bytes.Buffer
	buf.Write(header)
	for _, f := range fields {
		desc := make([]byte, 32)
		copy(desc[0:11], f.name)
		desc[11] = f.tag
		desc[16] = byte(f.length)
		desc[17] = byte(f.decimals)
		buf.Write(desc)
	}
	buf.WriteByte(0x0D)

	for _, row := range rows {
		buf.WriteByte(' ')
		for i, f := range fields {
			pad := strings.Repeat(" ", f.length-len(row[i]))
			if f.tag == 'N' {
				buf.WriteString(pad + row[i])
			} else {
				buf.WriteString(row[i] + pad)
			}
		}
	}
	buf.WriteByte(0x1A)
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func memberTable(t *testing.T) string {
	t.Helper()
	return writeFile(t, filepath.Join(t.TempDir(), "members.dbf"), encodeDBF(memberFields, memberRows))
}

func runDBFR(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestOutput(t *testing.T) {
	code, stdout, stderr := runDBFR(t, memberTable(t))
	require.Equal(t, exitOK, code, stderr)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	assert.Equal(t, []string{
		"country,since,area,pop_densit,founder",
		"Austria,1995-01-01,83855,103.76,false",
		"Belgium,1957-03-25,30528,336.59,true",
		"Sweden,1995-01-01,449964,21.89,false",
		",,,,",
	}, lines)
}

func TestOutputNoHeader(t *testing.T) {
	code, stdout, _ := runDBFR(t, "--no-header", memberTable(t))
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "Austria,1995-01-01,83855,103.76,false\n"))

	code, shortOut, _ := runDBFR(t, "-n", memberTable(t))
	require.Equal(t, exitOK, code)
	assert.Equal(t, stdout, shortOut)
}

func TestOutputDialect(t *testing.T) {
	code, stdout, _ := runDBFR(t, "--no-header", "--delimiter", ".", "--quote", "'", "--quote-always", memberTable(t))
	require.Equal(t, exitOK, code)

	lines := strings.Split(stdout, "\n")
	assert.Equal(t, "'Austria'.'1995-01-01'.'83855'.'103.76'.'false'", lines[0])
}

func TestOutputCRLF(t *testing.T) {
	code, stdout, _ := runDBFR(t, "--crlf", "-d", ";", memberTable(t))
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "country;since;area;pop_densit;founder\r\nAustria;"))
	assert.True(t, strings.HasSuffix(stdout, ";;;;\r\n"))
}

func TestEncodingFromCodePage(t *testing.T) {
	dir := t.TempDir()
	fields := []testField{{name: "country", tag: 'C', length: 12}}
	path := writeFile(t, filepath.Join(dir, "de.dbf"), encodeDBF(fields, [][]string{{"\xd6sterreich"}}))

	// Without a .cpg the table is read as ASCII and the value is null
	code, stdout, _ := runDBFR(t, "-n", path)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "\"\"\n", stdout)

	writeFile(t, filepath.Join(dir, "de.cpg"), []byte("ISO-8859-1\n"))
	code, stdout, _ = runDBFR(t, "-n", path)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "Österreich\n", stdout)

	// An explicit encoding wins
	code, stdout, _ = runDBFR(t, "-n", "--encoding", "ascii", path)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "\"\"\n", stdout)
}

func TestUsageErrors(t *testing.T) {
	table := memberTable(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no file", nil, "expected exactly one FILE argument"},
		{"two files", []string{table, table}, "expected exactly one FILE argument"},
		{"missing file", []string{"eggs"}, `file "eggs" does not exist`},
		{"directory", []string{filepath.Dir(table)}, "does not exist"},
		{"encoding", []string{"--encoding", "eggs", table}, `unsupported encoding "eggs"`},
		{"quote", []string{"--quote", "eggs", table}, "argument --quote/-q: must be a single character"},
		{"delimiter", []string{"-d", "", table}, "argument --delimiter/-d: must be a single character"},
		{"escape", []string{"--escape", "\\\\", table}, "argument --escape: must be a single character"},
		{"unknown flag", []string{"--eggs", table}, "unknown flag: --eggs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runDBFR(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestHelp(t *testing.T) {
	code, stdout, stderr := runDBFR(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Usage: dbfr [flags] FILE")
	assert.Contains(t, stderr, "--quote-always")
}

func TestTruncatedTable(t *testing.T) {
	data := encodeDBF(memberFields, memberRows)
	// Cut the table inside the third record.
	headerLength := 32 + 32*len(memberFields) + 1
	cut := headerLength + 2*38 + 10
	path := writeFile(t, filepath.Join(t.TempDir(), "cut.dbf"), data[:cut])

	code, stdout, stderr := runDBFR(t, "-n", path)
	assert.Equal(t, exitError, code)
	assert.Equal(t, "Austria,1995-01-01,83855,103.76,false\nBelgium,1957-03-25,30528,336.59,true\n", stdout)
	assert.Contains(t, stderr, "conversion failed")
	assert.Contains(t, stderr, "unexpected end of stream")
}

func TestEnvironmentAndConfigFile(t *testing.T) {
	table := memberTable(t)

	t.Run("environment", func(t *testing.T) {
		t.Setenv("DBFR_DELIMITER", "|")
		t.Setenv("DBFR_NO_HEADER", "true")

		code, stdout, _ := runDBFR(t, table)
		require.Equal(t, exitOK, code)
		assert.True(t, strings.HasPrefix(stdout, "Austria|1995-01-01|"))
	})

	t.Run("config file", func(t *testing.T) {
		cfg := writeFile(t, filepath.Join(t.TempDir(), "dbfr.yaml"), []byte("delimiter: \";\"\nquote-always: true\nno-header: true\n"))

		code, stdout, _ := runDBFR(t, "--config", cfg, table)
		require.Equal(t, exitOK, code)
		assert.True(t, strings.HasPrefix(stdout, `"Austria";"1995-01-01";`))

		// Flags override the file
		code, stdout, _ = runDBFR(t, "--config", cfg, "-d", ",", table)
		require.Equal(t, exitOK, code)
		assert.True(t, strings.HasPrefix(stdout, `"Austria","1995-01-01",`))
	})

	t.Run("missing config file", func(t *testing.T) {
		code, _, stderr := runDBFR(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), table)
		assert.Equal(t, exitError, code)
		assert.Contains(t, stderr, "read config")
	})
}

func TestVerboseLogging(t *testing.T) {
	code, _, stderr := runDBFR(t, "-v", memberTable(t))
	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "converting table")
	assert.Contains(t, stderr, "encoding=ascii")

	code, _, stderr = runDBFR(t, memberTable(t))
	require.Equal(t, exitOK, code)
	assert.NotContains(t, stderr, "converting table")
}
