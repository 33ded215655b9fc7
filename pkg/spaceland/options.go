package spaceland

import (
	"log/slog"
	"runtime"
)

// OpenOptions configures how tables, shapefiles and layers are opened.
type OpenOptions struct {
	// Encoding names the character encoding of text fields. When empty,
	// OpenLayer reads it from the .cpg sidecar and OpenTable uses
	// DefaultEncoding.
	Encoding string

	// Strict rejects geometry records whose shape type differs from the
	// file's instead of logging a warning.
	Strict bool

	// Opener supplies the byte streams. Nil opens local files.
	Opener Opener

	// Logger receives debug and warning output. Nil discards it.
	Logger *slog.Logger
}

// DefaultOpenOptions returns options that read local files with the
// encoding found beside them.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		Opener: NewLocalOpener(""),
	}
}

func (o OpenOptions) opener() Opener {
	if o.Opener == nil {
		return NewLocalOpener("")
	}
	return o.Opener
}

func (o OpenOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// LoadOptions controls how LoadCatalog scans a directory.
type LoadOptions struct {
	// Workers is the number of layers read concurrently.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors keeps loading when a layer cannot be read. Failed layers
	// are logged and left out of the catalog.
	SkipErrors bool

	// Progress is called after each layer is read, successfully or not.
	// Calls are serialized.
	Progress func(loaded, total int)

	Open OpenOptions
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Open:       DefaultOpenOptions(),
	}
}
