package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

// Get members that joined in a given year
func joinedIn(layer *spaceland.Layer, year int) ([]spaceland.Feature, error) {
	var members []spaceland.Feature
	for f, err := range layer.Features() {
		if err != nil {
			return nil, err
		}
		since, ok := f.Attributes["since"].Date()
		if ok && since.Year() == year {
			members = append(members, f)
		}
	}
	return members, nil
}

// Get founding members
func founders(layer *spaceland.Layer) ([]spaceland.Feature, error) {
	var members []spaceland.Feature
	for f, err := range layer.Features() {
		if err != nil {
			return nil, err
		}
		if founder, ok := f.Attributes["founder"].Boolean(); ok && founder {
			members = append(members, f)
		}
	}
	return members, nil
}

func main() {
	layer, err := spaceland.OpenLayer(context.Background(), "eu1995", spaceland.DefaultOpenOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	joined, err := joinedIn(layer, 1995)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Joined in 1995: %d\n", len(joined))

	founding, err := founders(layer)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Founders: %d\n", len(founding))
	for _, f := range founding {
		since, _ := f.Attributes["since"].Date()
		fmt.Printf("  %s since %s\n", f.Attributes["country"], since.Format(time.DateOnly))
	}
}
