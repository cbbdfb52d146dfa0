package quadgrid

import (
	"encoding/gob"
	"fmt"
	"os"
)

// gridData is the serializable form of a grid. Only the resolution,
// bounds and mask are stored; qids, areas and centroids are recomputed
// on load.
type gridData struct {
	Resolution float64
	Bounds     Bounds
	Mask       []bool
}

// SaveToFile writes the grid to a binary file.
func (g *QuadGrid) SaveToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	data := gridData{
		Resolution: g.geom.res,
		Bounds:     g.geom.bounds,
		Mask:       g.mask,
	}
	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("failed to encode grid: %w", err)
	}
	return nil
}

// LoadFromFile reads a grid previously written by SaveToFile.
func LoadFromFile(filename string) (*QuadGrid, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data gridData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode grid: %w", err)
	}

	g, err := New(data.Resolution, data.Bounds)
	if err != nil {
		return nil, err
	}
	if data.Mask != nil {
		if len(data.Mask) != g.NCells() {
			return nil, fmt.Errorf("%w: stored mask has %d cells, grid has %d", ErrConfiguration, len(data.Mask), g.NCells())
		}
		g.mask = data.Mask
	}
	return g, nil
}
