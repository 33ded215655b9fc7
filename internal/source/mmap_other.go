//go:build !unix

package source

import (
	"bytes"
	"io"
	"os"
)

// mapFile reads the whole file into memory on platforms without mmap.
func mapFile(f *os.File, size int) (io.ReadSeekCloser, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return nopCloser{bytes.NewReader(data)}, nil
}
