//go:build unix

package source

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) (io.ReadSeekCloser, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	// Advisory only; records are mostly read front to back.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return &mapping{Reader: bytes.NewReader(data), data: data}, nil
}

// mapping reads from a read-only memory map until Close unmaps it.
type mapping struct {
	*bytes.Reader
	data []byte
}

func (m *mapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.Reader = bytes.NewReader(nil)
	return err
}
