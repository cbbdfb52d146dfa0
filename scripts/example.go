package main

import (
	"fmt"
	"log"

	"github.com/kass/go-quadgrid/pkg/export"
	"github.com/kass/go-quadgrid/pkg/quadgrid"
	"github.com/kass/go-quadgrid/pkg/region"
)

func main() {
	// Build a 1 degree grid over the contiguous US.
	grid, err := quadgrid.New(1.0, quadgrid.Bounds{
		LonFrom: -125, LonTo: -66, LatFrom: 25, LatTo: 49,
	})
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}
	fmt.Println(grid)
	fmt.Printf("%d cells, %.0f km2 total\n", grid.NCells(), grid.TotalAreaKm2())

	// Which cell holds Denver, and how big is it?
	qid, err := grid.QidOf(-104.9903, 39.7392)
	if err != nil {
		log.Fatalf("Failed to locate Denver: %v", err)
	}
	row, col, err := grid.Key().Decode(qid)
	if err != nil {
		log.Fatalf("Failed to decode qid: %v", err)
	}
	fmt.Printf("Denver: qid %d (global row %d, col %d)\n", qid, row, col)

	// Mask against a rough Colorado rectangle with the default buffer.
	colorado := region.Rect(-109.05, 37.0, -102.04, 41.0)
	if err := grid.ApplyMask(colorado, quadgrid.AutoBuffer); err != nil {
		log.Fatalf("Failed to mask: %v", err)
	}
	fmt.Printf("Colorado mask: %d of %d cells inside\n", grid.MaskedCount(), grid.NCells())

	// Distances from Denver to every centroid.
	dists, err := grid.Distance(-104.9903, 39.7392)
	if err != nil {
		log.Fatalf("Failed to compute distances: %v", err)
	}
	fmt.Printf("First centroid is %.1f km from Denver\n", dists[0])

	// Flat table export, one record per cell.
	records := export.Table(grid)
	fmt.Printf("Exported %d records; first: %+v\n", len(records), records[0])
}
