// Package spaceland reads ESRI shapefile layers: the dBase III attribute
// table (.dbf) and the geometry stream (.shp).
//
// # Basic Usage
//
//	table, err := spaceland.OpenTable(ctx, "eu1995.dbf", spaceland.DefaultOpenOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer table.Close()
//
//	for record, err := range table.All() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(record[0].Text())
//	}
//
// Records can also be read by index. Negative indexes count from the end:
//
//	sweden, err := table.Record(13)
//	last, err := table.Record(-1)
//
// # Layers
//
// A layer pairs the geometry stream with its attribute table. The attribute
// encoding is read from the .cpg sidecar unless one is given:
//
//	layer, err := spaceland.OpenLayer(ctx, "capitals", spaceland.DefaultOpenOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer layer.Close()
//
//	for feature, err := range layer.Features() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if p, ok := feature.Geometry.(spaceland.Point); ok {
//	        fmt.Println(feature.Attributes["name"], p.X, p.Y)
//	    }
//	}
//
// # Null Values
//
// A field value that cannot be decoded is null, never an error. Check
// Value.IsNull or use the typed accessors, which report ok == false for nulls.
// Only point and null geometries are decoded; files declaring other shape
// types fail with *UnsupportedShapeTypeError before any record is read.
//
// # Sources
//
// Streams come from an Opener: local files (memory mapped), compressed files
// (.gz, .zst, .lz4), Amazon S3, MinIO, optionally rate limited. See
// NewLocalOpener and friends.
//
// # Spatial Queries
//
// PointIndex builds an R-tree over the points of one layer, and Catalog
// indexes the extents of every layer under a directory:
//
//	catalog, err := spaceland.LoadCatalog(ctx, "/data/layers", spaceland.DefaultLoadOptions())
//	entries := catalog.Query(spaceland.Bounds{MinX: 5, MinY: 45, MaxX: 15, MaxY: 55}, spaceland.QueryOptions{})
//
// IndexCache keeps recently built point indexes in memory, evicting the least
// recently used when its memory budget is exceeded.
package spaceland
