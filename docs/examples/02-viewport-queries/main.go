package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

func main() {
	layer, err := spaceland.OpenLayer(context.Background(), "eu1995", spaceland.DefaultOpenOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	// Index the point geometry once, then query it many times
	idx, err := layer.PointIndex()
	if err != nil {
		log.Fatal(err)
	}

	// Define viewport (Benelux)
	viewport := spaceland.Bounds{
		MinX: 2.5, MaxX: 7.5,
		MinY: 49.4, MaxY: 53.6,
	}

	hits := idx.Query(viewport)
	fmt.Printf("Visible records: %d\n", len(hits))

	// Query results index the attribute table directly
	for _, i := range hits {
		record, err := layer.Table().Record(i)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %d: %s\n", i, record[0])
	}

	if i, ok := idx.Nearest(13.4, 52.5); ok {
		record, err := layer.Table().Record(i)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Nearest to Berlin: %s\n", record[0])
	}
}
