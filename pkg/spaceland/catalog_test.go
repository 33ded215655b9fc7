package spaceland

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCatalog writes capitals plus a few smaller layers under dir.
func writeCatalog(t *testing.T, dir string) {
	t.Helper()

	writeLayer(t, dir, capitals())
	writeLayer(t, dir, testLayer{
		name:      "alps/peaks",
		shapeType: ShapePoint,
		points:    []*Point{pt(6.86, 45.83), pt(7.66, 45.98), pt(10.04, 46.49)},
		fields:    []testField{{name: "name", tag: 'C', length: 12}, {name: "height", tag: 'N', length: 5}},
		rows:      [][]string{{"Mont Blanc", "4808"}, {"Matterhorn", "4478"}, {"Bernina", "4049"}},
	})
	writeLayer(t, dir, testLayer{
		name:      "pacific/islands",
		shapeType: ShapePoint,
		points:    []*Point{pt(-157.86, 21.31), pt(-149.57, -17.53)},
	})
	writeLayer(t, dir, testLayer{
		name:      "alps/glaciers",
		shapeType: ShapePolygon,
		points:    []*Point{pt(7.0, 45.9), pt(8.0, 46.5)},
		fields:    []testField{{name: "name", tag: 'C', length: 10}},
		rows:      [][]string{{"Aletsch"}, {"Rhone"}},
	})
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)

	catalog, err := LoadCatalog(context.Background(), dir, LoadOptions{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, catalog.Count())
	assert.Empty(t, catalog.Skipped)
	assert.Equal(t, Bounds{MinX: -157.86, MinY: -17.53, MaxX: 24.94, MaxY: 60.17}, catalog.Bounds())

	byName := map[string]CatalogEntry{}
	for _, entry := range catalog.All() {
		byName[entry.Name] = entry
	}

	peaks := byName[filepath.Join(dir, "alps", "peaks")]
	assert.Equal(t, ShapePoint, peaks.ShapeType)
	assert.Equal(t, 3, peaks.Records)
	assert.Equal(t, Bounds{MinX: 6.86, MinY: 45.83, MaxX: 10.04, MaxY: 46.49}, peaks.Extent)

	islands := byName[filepath.Join(dir, "pacific", "islands")]
	assert.Equal(t, -1, islands.Records, "layer without a table")

	assert.Equal(t, 15, byName[filepath.Join(dir, "europe", "capitals")].Records)
}

func TestCatalogQuery(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)

	catalog, err := LoadCatalog(context.Background(), dir, LoadOptions{})
	require.NoError(t, err)

	names := func(entries []CatalogEntry) []string {
		var out []string
		for _, e := range entries {
			rel, err := filepath.Rel(dir, e.Name)
			require.NoError(t, err)
			out = append(out, filepath.ToSlash(rel))
		}
		return out
	}

	switzerland := Bounds{MinX: 5.9, MinY: 45.8, MaxX: 10.5, MaxY: 47.8}
	assert.Equal(t,
		[]string{"alps/glaciers", "alps/peaks", "europe/capitals"},
		names(catalog.Query(switzerland, QueryOptions{})))

	assert.Equal(t,
		[]string{"alps/peaks", "europe/capitals"},
		names(catalog.Query(switzerland, QueryOptions{ShapeTypes: []ShapeType{ShapePoint}})))

	hawaii := Bounds{MinX: -160, MinY: 18, MaxX: -154, MaxY: 23}
	assert.Equal(t, []string{"pacific/islands"}, names(catalog.Query(hawaii, QueryOptions{})))

	assert.Empty(t, catalog.Query(Bounds{MinX: 100, MinY: -40, MaxX: 110, MaxY: -30}, QueryOptions{}))

	// Extents touching the query window count as intersecting
	edge := Bounds{MinX: 24.94, MinY: 60.17, MaxX: 30, MaxY: 65}
	assert.Equal(t, []string{"europe/capitals"}, names(catalog.Query(edge, QueryOptions{})))
}

func TestLoadCatalogSkipErrors(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.shp"), []byte("not a shapefile"), 0o644))

	var calls, last atomic.Int64
	opts := LoadOptions{
		Workers:    3,
		SkipErrors: true,
		Progress: func(loaded, total int) {
			calls.Add(1)
			last.Store(int64(loaded))
			assert.Equal(t, 5, total)
		},
	}

	catalog, err := LoadCatalog(context.Background(), dir, opts)
	require.NoError(t, err)

	assert.Equal(t, 4, catalog.Count())
	require.Len(t, catalog.Skipped, 1)
	assert.ErrorIs(t, catalog.Skipped[0], ErrUnexpectedEndOfStream)
	assert.Contains(t, catalog.Skipped[0].Error(), "broken")

	assert.Equal(t, int64(5), calls.Load())
	assert.Equal(t, int64(5), last.Load())
}

func TestLoadCatalogFailFast(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.shp"), []byte("not a shapefile"), 0o644))

	_, err := LoadCatalog(context.Background(), dir, LoadOptions{Workers: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedEndOfStream)
}

func TestLoadCatalogEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("nothing here"), 0o644))

	_, err := LoadCatalog(context.Background(), dir, DefaultLoadOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no layers found")
}

func TestLoadCatalogAllBroken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.shp"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.SHP"), []byte{1, 2, 3}, 0o644))

	_, err := LoadCatalog(context.Background(), dir, LoadOptions{SkipErrors: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no layers could be loaded (2 errors)")
}

func TestLoadCatalogCanceled(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadCatalog(ctx, dir, LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildCatalogWithOpener(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)

	opts := LoadOptions{Open: OpenOptions{Opener: NewLocalOpener(dir)}}
	catalog, err := BuildCatalog(context.Background(), []string{"alps/peaks.shp", "europe/capitals"}, opts)
	require.NoError(t, err)

	require.Equal(t, 2, catalog.Count())
	entries := catalog.Query(catalog.Bounds(), QueryOptions{})
	require.Len(t, entries, 2)
	assert.Equal(t, "alps/peaks", entries[0].Name)
	assert.Equal(t, "europe/capitals", entries[1].Name)
}
