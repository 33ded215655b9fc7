package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

func safeOpenLayer(ctx context.Context, name string) (*spaceland.Layer, error) {
	layer, err := spaceland.OpenLayer(ctx, name, spaceland.DefaultOpenOptions())
	if err != nil {
		// Check if file exists
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("layer not found: %s", name)
		}

		var fieldErr *spaceland.UnsupportedFieldTypeError
		if errors.As(err, &fieldErr) {
			return nil, fmt.Errorf("%s: field %s uses type %q, which dBase III does not define",
				name, fieldErr.Field, fieldErr.Tag)
		}
		return nil, err
	}

	if layer.Len() == 0 {
		log.Printf("Warning: %s contains no records", name)
	}
	return layer, nil
}

func countPoints(layer *spaceland.Layer) (points, nulls int, err error) {
	for f, err := range layer.Features() {
		var unsupported *spaceland.UnsupportedShapeTypeError
		var mismatch *spaceland.LayerMismatchError
		switch {
		case errors.As(err, &unsupported):
			return 0, 0, fmt.Errorf("only point layers can be counted, not %s", unsupported.Code)
		case errors.As(err, &mismatch):
			log.Printf("Warning: %v", mismatch)
			return points, nulls, nil
		case errors.Is(err, spaceland.ErrUnexpectedEndOfStream):
			return points, nulls, fmt.Errorf("truncated after %d records: %w", points+nulls, err)
		case err != nil:
			return 0, 0, err
		}

		if _, ok := f.Geometry.(spaceland.Point); ok {
			points++
		} else {
			nulls++
		}
	}
	return points, nulls, nil
}

func main() {
	ctx := context.Background()

	layer, err := safeOpenLayer(ctx, "eu1995")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	defer layer.Close()

	points, nulls, err := countPoints(layer)
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	fmt.Printf("Points: %d, null shapes: %d\n", points, nulls)

	// Record indexes are checked against the table length
	_, err = layer.Table().Record(layer.Len())
	var rangeErr *spaceland.IndexOutOfRangeError
	if errors.As(err, &rangeErr) {
		log.Printf("Expected error: %v", err)
	}

	// Try to open a non-existent layer
	_, err = safeOpenLayer(ctx, "atlantis")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
