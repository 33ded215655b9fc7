package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Local opens files from the local file system.
//
// Regular, non-empty files are memory mapped read-only where the platform
// supports it. The file descriptor is released right after mapping, so an
// open layer holds no descriptors.
type Local struct {
	// Root is joined with relative names. Absolute names are used as is.
	Root string

	// NoMmap returns the *os.File itself instead of a mapping.
	NoMmap bool
}

// NewLocal returns a Local opener rooted at root.
func NewLocal(root string) *Local {
	return &Local{Root: root}
}

// Open implements Opener.
func (l *Local) Open(_ context.Context, name string) (io.ReadSeekCloser, error) {
	path := filepath.FromSlash(name)
	if l.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if l.NoMmap {
		return f, nil
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return f, nil
	}

	m, err := mapFile(f, int(info.Size()))
	_ = f.Close()
	if err != nil {
		return nil, &os.PathError{Op: "mmap", Path: path, Err: err}
	}
	return m, nil
}
