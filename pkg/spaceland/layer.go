package spaceland

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path"
	"strings"
)

// layerExtensions are stripped from the name given to OpenLayer.
var layerExtensions = map[string]bool{
	".shp": true,
	".dbf": true,
	".shx": true,
	".cpg": true,
	".prj": true,
}

// LayerName returns name without a shapefile component extension, so that
// "roads.shp", "roads.dbf" and "roads" all name the same layer.
func LayerName(name string) string {
	if ext := path.Ext(name); layerExtensions[strings.ToLower(ext)] {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// Layer pairs a shapefile geometry stream with its attribute table.
//
// Geometry i belongs to attribute record i. A Layer holds two streams and,
// like its parts, supports one iteration at a time.
type Layer struct {
	name     string
	encoding string
	shp      *Shapefile
	dbf      *Table
}

// Feature is one record of a layer.
type Feature struct {
	// Index is the zero-based record number.
	Index int

	Geometry Geometry

	// Record holds the attribute values in field order.
	Record Record

	// Attributes maps field names to values.
	Attributes map[string]Value
}

// LayerMismatchError reports a geometry stream and attribute table whose
// record counts differ.
type LayerMismatchError struct {
	Layer   string
	Index   int
	Missing string // "geometry" or "attributes"
}

func (e *LayerMismatchError) Error() string {
	return fmt.Sprintf("layer %s: record %d has no %s", e.Layer, e.Index, e.Missing)
}

// OpenLayer opens name.shp and name.dbf.
//
// When opts.Encoding is empty the attribute encoding is read from name.cpg,
// falling back to DefaultEncoding.
func OpenLayer(ctx context.Context, name string, opts OpenOptions) (*Layer, error) {
	name = LayerName(name)

	if opts.Encoding == "" {
		opts.Encoding = DetectEncoding(ctx, name+".cpg", opts)
	}

	shp, err := OpenShapefile(ctx, name+".shp", opts)
	if err != nil {
		return nil, err
	}

	dbf, err := OpenTable(ctx, name+".dbf", opts)
	if err != nil {
		_ = shp.Close()
		return nil, err
	}

	opts.logger().Debug("layer opened",
		"layer", name,
		"shape_type", shp.ShapeType().String(),
		"records", dbf.Len(),
		"encoding", opts.Encoding)

	return &Layer{
		name:     name,
		encoding: opts.Encoding,
		shp:      shp,
		dbf:      dbf,
	}, nil
}

// Name returns the layer name without extension.
func (l *Layer) Name() string { return l.name }

// Encoding returns the attribute encoding in use.
func (l *Layer) Encoding() string { return l.encoding }

// ShapeType returns the shape type declared by the geometry header.
func (l *Layer) ShapeType() ShapeType { return l.shp.ShapeType() }

// Bounds returns the XY extent declared by the geometry header.
func (l *Layer) Bounds() Bounds { return BoundsOf(l.shp.Header().BBox) }

// Schema returns the attribute table schema.
func (l *Layer) Schema() Schema { return l.dbf.Schema() }

// Len returns the number of attribute records.
func (l *Layer) Len() int { return l.dbf.Len() }

// Table returns the attribute table.
func (l *Layer) Table() *Table { return l.dbf }

// Shapefile returns the geometry stream.
func (l *Layer) Shapefile() *Shapefile { return l.shp }

// Close releases both streams.
func (l *Layer) Close() error {
	return errors.Join(l.shp.Close(), l.dbf.Close())
}

// Features iterates over geometry and attribute records together.
//
// Iteration stops at the first error, yielded with a zero Feature. A geometry
// stream and table of different lengths end with *LayerMismatchError.
func (l *Layer) Features() iter.Seq2[Feature, error] {
	return func(yield func(Feature, error) bool) {
		geometries, err := l.shp.Records()
		if err != nil {
			yield(Feature{}, fmt.Errorf("layer %s: %w", l.name, err))
			return
		}
		records, err := l.dbf.Records(0)
		if err != nil {
			yield(Feature{}, fmt.Errorf("layer %s: %w", l.name, err))
			return
		}

		fields := l.dbf.Fields()
		for i := 0; ; i++ {
			geom, gerr := geometries.Next()
			if gerr != nil && !errors.Is(gerr, io.EOF) {
				yield(Feature{}, fmt.Errorf("layer %s: %w", l.name, gerr))
				return
			}
			record, rerr := records.Next()
			if rerr != nil && !errors.Is(rerr, io.EOF) {
				yield(Feature{}, fmt.Errorf("layer %s: %w", l.name, rerr))
				return
			}

			switch {
			case gerr != nil && rerr != nil:
				return
			case gerr != nil:
				yield(Feature{}, &LayerMismatchError{Layer: l.name, Index: i, Missing: "geometry"})
				return
			case rerr != nil:
				yield(Feature{}, &LayerMismatchError{Layer: l.name, Index: i, Missing: "attributes"})
				return
			}

			attrs := make(map[string]Value, len(fields))
			for j, f := range fields {
				attrs[f.Name] = record[j]
			}
			if !yield(Feature{Index: i, Geometry: geom, Record: record, Attributes: attrs}, nil) {
				return
			}
		}
	}
}
