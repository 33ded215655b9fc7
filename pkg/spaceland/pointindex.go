package spaceland

import (
	"fmt"
	"slices"

	"github.com/dhconnelly/rtreego"
)

// spatialEpsilon pads point rectangles and query windows. The R-tree treats
// touching rectangles as disjoint; results are filtered exactly afterwards.
const spatialEpsilon = 1e-6

// PointIndex is an R-tree over the point records of a shapefile.
//
// Queries return record indexes, which address the layer's attribute table
// directly:
//
//	idx, err := layer.PointIndex()
//	for _, i := range idx.Query(viewport) {
//	    record, err := layer.Table().Record(i)
//	    ...
//	}
type PointIndex struct {
	rtree  *rtreego.Rtree
	count  int
	bounds Bounds
}

// indexedPoint wraps a point record for R-tree storage.
type indexedPoint struct {
	index int
	point Point
}

// Bounds implements rtreego.Spatial.
func (p *indexedPoint) Bounds() rtreego.Rect {
	return rtreego.Point{p.point.X, p.point.Y}.ToRect(spatialEpsilon)
}

// BuildPointIndex reads every record of shp and indexes its points. Null
// records are skipped but keep their index.
func BuildPointIndex(shp *Shapefile) (*PointIndex, error) {
	var points []rtreego.Spatial
	var bounds Bounds

	index := 0
	for geom, err := range shp.All() {
		if err != nil {
			return nil, fmt.Errorf("build point index: %w", err)
		}
		if p, ok := geom.(Point); ok {
			pb := Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			if len(points) == 0 {
				bounds = pb
			} else {
				bounds = bounds.Union(pb)
			}
			points = append(points, &indexedPoint{index: index, point: p})
		}
		index++
	}

	// Create R-tree (2D, min=25 children, max=50 children)
	return &PointIndex{
		rtree:  rtreego.NewTree(2, 25, 50, points...),
		count:  len(points),
		bounds: bounds,
	}, nil
}

// PointIndex builds a PointIndex over the layer's geometry.
func (l *Layer) PointIndex() (*PointIndex, error) {
	return BuildPointIndex(l.shp)
}

// Len returns the number of indexed points.
func (idx *PointIndex) Len() int {
	return idx.count
}

// Bounds returns the extent of the indexed points.
func (idx *PointIndex) Bounds() Bounds {
	return idx.bounds
}

// Query returns the indexes of the points within bounds, edges included,
// in ascending order.
func (idx *PointIndex) Query(bounds Bounds) []int {
	spatials := idx.rtree.SearchIntersect(bounds.Expand(spatialEpsilon).rect())

	result := make([]int, 0, len(spatials))
	for _, spatial := range spatials {
		p := spatial.(*indexedPoint)
		if bounds.Contains(p.point.X, p.point.Y) {
			result = append(result, p.index)
		}
	}
	slices.Sort(result)
	return result
}

// Nearest returns the index of the point closest to (x, y). ok is false for
// an empty index.
func (idx *PointIndex) Nearest(x, y float64) (index int, ok bool) {
	if idx.count == 0 {
		return 0, false
	}
	nearest := idx.rtree.NearestNeighbor(rtreego.Point{x, y})
	if nearest == nil {
		return 0, false
	}
	return nearest.(*indexedPoint).index, true
}
