package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

func main() {
	ctx := context.Background()

	// Open eu1995.shp, eu1995.dbf and, if present, eu1995.cpg
	layer, err := spaceland.OpenLayer(ctx, "eu1995", spaceland.DefaultOpenOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	// Print layer info
	fmt.Printf("Layer: %s\n", layer.Name())
	fmt.Printf("Shape type: %s\n", layer.ShapeType())
	fmt.Printf("Encoding: %s\n", layer.Encoding())
	fmt.Printf("Records: %d\n", layer.Len())

	bounds := layer.Bounds()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.MinX, bounds.MinY,
		bounds.MaxX, bounds.MaxY)

	for _, field := range layer.Schema().Fields {
		fmt.Printf("  %-10s %s(%d)\n", field.Name, field.Type, field.Length)
	}
}
