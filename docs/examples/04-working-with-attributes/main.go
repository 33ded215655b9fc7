package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

func printRecord(fields []spaceland.FieldDescriptor, record spaceland.Record) {
	for i, field := range fields {
		v := record[i]
		if v.IsNull() {
			fmt.Printf("  %s: <null>\n", field.Name)
			continue
		}

		switch field.Type {
		case spaceland.FieldInteger:
			n, _ := v.Integer()
			fmt.Printf("  %s: %d\n", field.Name, n)
		case spaceland.FieldFloat:
			f, _ := v.Float()
			fmt.Printf("  %s: %.*f\n", field.Name, field.Decimals, f)
		default:
			fmt.Printf("  %s: %s\n", field.Name, v)
		}
	}
}

func main() {
	ctx := context.Background()

	// Attribute tables can be read without their geometry
	table, err := spaceland.OpenTable(ctx, "eu1995.dbf", spaceland.OpenOptions{
		Encoding: spaceland.DetectEncoding(ctx, "eu1995.cpg", spaceland.OpenOptions{}),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer table.Close()

	// Print the first few records
	count := 0
	for record, err := range table.All() {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Record %d:\n", count)
		printRecord(table.Fields(), record)
		count++
		if count >= 3 {
			break
		}
	}

	// Random access, counting back from the end
	last, err := table.Record(-1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Last record:")
	printRecord(table.Fields(), last)

	deleted, err := table.Deleted()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Deleted records: %d\n", deleted.GetCardinality())
}
