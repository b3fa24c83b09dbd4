package world

import "fmt"

// SkyLight is the light level stamped on every emitted layer.
const SkyLight uint8 = 15

// Layer is a half-open vertical span [Start, End) in column-local space where
// 0 is the world's minimum height.
type Layer struct {
	Start    int
	End      int
	Light    uint8
	Material Material
	Biome    BiomeID
}

// Height returns the number of blocks covered by the layer.
func (l Layer) Height() int {
	return l.End - l.Start
}

// BlockRef and BiomeRef are opaque handles issued by a Registry.
type BlockRef int32
type BiomeRef int32

// Point is the sink-facing form of a Layer with resolved representations.
type Point struct {
	Start int
	End   int
	Light uint8
	Block BlockRef
	Biome BiomeRef
}

// ValidateColumn reports whether layers tile [0, top) exactly once, in
// increasing order, without zero-height entries.
func ValidateColumn(layers []Layer, top int) error {
	if top <= 0 {
		if len(layers) != 0 {
			return fmt.Errorf("column of height %d must be empty, got %d layers", top, len(layers))
		}
		return nil
	}
	if len(layers) == 0 {
		return fmt.Errorf("column is empty, want coverage of [0,%d)", top)
	}
	cursor := 0
	for i, layer := range layers {
		if layer.Start != cursor {
			return fmt.Errorf("layer %d starts at %d, want %d", i, layer.Start, cursor)
		}
		if layer.End <= layer.Start {
			return fmt.Errorf("layer %d [%d,%d) is empty", i, layer.Start, layer.End)
		}
		cursor = layer.End
	}
	if cursor != top {
		return fmt.Errorf("column ends at %d, want %d", cursor, top)
	}
	return nil
}
