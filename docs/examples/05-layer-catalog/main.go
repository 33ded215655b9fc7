package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

func main() {
	ctx := context.Background()

	// Read the header of every layer under ./layers in parallel
	opts := spaceland.DefaultLoadOptions()
	opts.Progress = func(loaded, total int) {
		fmt.Printf("\rLoading layers: %d/%d", loaded, total)
	}

	catalog, err := spaceland.LoadCatalog(ctx, "layers", opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nCatalog contains %d layers (%d skipped)\n\n", catalog.Count(), len(catalog.Skipped))

	for _, entry := range catalog.All() {
		fmt.Printf("Layer: %s\n", entry.Name)
		fmt.Printf("  Shape type: %s\n", entry.ShapeType)
		fmt.Printf("  Records: %d\n", entry.Records)
		fmt.Printf("  Extent: [%.4f,%.4f] to [%.4f,%.4f]\n",
			entry.Extent.MinX, entry.Extent.MinY,
			entry.Extent.MaxX, entry.Extent.MaxY)
	}

	// Point layers covering the Alps
	alps := spaceland.Bounds{MinX: 5.0, MinY: 44.0, MaxX: 16.0, MaxY: 48.5}
	entries := catalog.Query(alps, spaceland.QueryOptions{
		ShapeTypes: []spaceland.ShapeType{spaceland.ShapePoint},
	})

	// Keep the point indexes of recently queried layers in memory
	cache := spaceland.NewIndexCache(64 * 1024 * 1024)
	for _, entry := range entries {
		idx, err := cache.Get(ctx, entry.Name, opts.Open)
		if err != nil {
			log.Printf("Failed to index %s: %v", entry.Name, err)
			continue
		}
		fmt.Printf("%s: %d points in the Alps\n", entry.Name, len(idx.Query(alps)))
	}

	stats := cache.Stats()
	fmt.Printf("\nCached indexes: %d (%d bytes)\n", stats.Indexes, stats.UsedMemory)
}
