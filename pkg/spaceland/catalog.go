package spaceland

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/dhconnelly/rtreego"
	"golang.org/x/sync/errgroup"
)

// Catalog provides spatial queries over a collection of layers.
//
// The catalog stores lightweight metadata for each layer (extent, shape type,
// record count) read from the file headers only, and indexes the extents in
// an R-tree. This allows opening only the layers that intersect a region of
// interest.
//
// Example:
//
//	catalog, err := spaceland.LoadCatalog(ctx, "/data/layers", spaceland.DefaultLoadOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	alps := spaceland.Bounds{MinX: 5.0, MinY: 44.0, MaxX: 16.0, MaxY: 48.5}
//	for _, entry := range catalog.Query(alps, spaceland.QueryOptions{}) {
//	    fmt.Println(entry.Name, entry.Records)
//	}
type Catalog struct {
	entries []CatalogEntry
	rtree   *rtreego.Rtree

	// Skipped holds the errors of layers left out under LoadOptions.SkipErrors.
	Skipped []error
}

// CatalogEntry contains indexed metadata for a single layer.
type CatalogEntry struct {
	Name      string    // Layer name, as passed to OpenLayer
	ShapeType ShapeType // Declared geometry type
	Extent    Bounds    // Declared XY extent
	Records   int       // Attribute records, -1 without a .dbf
}

// catalogItem wraps an entry for R-tree storage.
type catalogItem struct {
	entry *CatalogEntry
}

// Bounds implements rtreego.Spatial.
func (c catalogItem) Bounds() rtreego.Rect {
	return c.entry.Extent.rect()
}

// QueryOptions controls catalog query behavior.
type QueryOptions struct {
	// ShapeTypes filters by declared shape type.
	// If non-empty, only layers of these types are returned.
	// Example: []ShapeType{ShapePoint}
	ShapeTypes []ShapeType
}

// LoadCatalog builds a catalog by scanning a directory tree for .shp files.
//
// Layers are read in parallel. The directory structure can be flat or nested:
//
//	layers/
//	  europe/
//	    capitals.shp
//	    capitals.dbf
//	  rivers.shp
func LoadCatalog(ctx context.Context, root string, opts LoadOptions) (*Catalog, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".shp") {
			names = append(names, LayerName(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no layers found in %s", root)
	}

	return BuildCatalog(ctx, names, opts)
}

// BuildCatalog builds a catalog from layer names, for sources that cannot
// be walked such as object stores. Names are opened through opts.Open.
func BuildCatalog(ctx context.Context, names []string, opts LoadOptions) (*Catalog, error) {
	logger := opts.Open.logger()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	loaded := make([]*CatalogEntry, len(names))
	var (
		mu      sync.Mutex
		done    int
		skipped []error
	)

	for i, name := range names {
		g.Go(func() error {
			entry, err := loadEntry(gctx, LayerName(name), opts.Open)

			mu.Lock()
			defer mu.Unlock()

			done++
			if opts.Progress != nil {
				opts.Progress(done, len(names))
			}

			if err != nil {
				err = fmt.Errorf("%s: %w", name, err)
				if !opts.SkipErrors {
					return err
				}
				logger.Warn("skipping layer", "layer", name, "error", err)
				skipped = append(skipped, err)
				return nil
			}
			loaded[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(names))
	for _, entry := range loaded {
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no layers could be loaded (%d errors)", len(skipped))
	}

	logger.Debug("catalog built", "layers", len(entries), "skipped", len(skipped))
	return newCatalog(entries, skipped), nil
}

func newCatalog(entries []CatalogEntry, skipped []error) *Catalog {
	items := make([]rtreego.Spatial, len(entries))
	for i := range entries {
		items[i] = catalogItem{entry: &entries[i]}
	}

	// Create R-tree (2D, min=25 children, max=50 children)
	return &Catalog{
		entries: entries,
		rtree:   rtreego.NewTree(2, 25, 50, items...),
		Skipped: skipped,
	}
}

// loadEntry reads the shapefile header and the table record count.
func loadEntry(ctx context.Context, name string, opts OpenOptions) (*CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shp, err := OpenShapefile(ctx, name+".shp", opts)
	if err != nil {
		return nil, err
	}
	header := shp.Header()
	if err := shp.Close(); err != nil {
		return nil, err
	}

	entry := &CatalogEntry{
		Name:      name,
		ShapeType: header.ShapeType,
		Extent:    BoundsOf(header.BBox),
		Records:   -1,
	}

	dbf, err := OpenTable(ctx, name+".dbf", opts)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return entry, nil
	case err != nil:
		return nil, err
	}
	entry.Records = dbf.Len()
	return entry, dbf.Close()
}

// Query returns layers whose extent intersects bounds, sorted by name.
func (c *Catalog) Query(bounds Bounds, opts QueryOptions) []CatalogEntry {
	spatials := c.rtree.SearchIntersect(bounds.Expand(spatialEpsilon).rect())

	var result []CatalogEntry
	for _, spatial := range spatials {
		entry := *spatial.(catalogItem).entry

		if !bounds.Intersects(entry.Extent) {
			continue
		}
		if len(opts.ShapeTypes) > 0 && !slices.Contains(opts.ShapeTypes, entry.ShapeType) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b CatalogEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

// Count returns the total number of layers in the catalog.
func (c *Catalog) Count() int {
	return len(c.entries)
}

// Bounds returns the union of all layer extents in the catalog.
func (c *Catalog) Bounds() Bounds {
	if len(c.entries) == 0 {
		return Bounds{}
	}

	bounds := c.entries[0].Extent
	for i := 1; i < len(c.entries); i++ {
		bounds = bounds.Union(c.entries[i].Extent)
	}
	return bounds
}

// All returns all catalog entries in load order.
func (c *Catalog) All() []CatalogEntry {
	return c.entries
}
