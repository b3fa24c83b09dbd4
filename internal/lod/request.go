package lod

import "fmt"

const (
	chunkSize = 16

	// Cover class is read on a coarser sub-grid from this detail level on.
	coverStrideStart = 7
	// Detailed water switches from per-column to grouped sampling here.
	detailedWaterStrideStart = 5
	// Detailed water is never used above this detail level.
	detailedWaterMaxDetail = 5
	maxStride              = 4

	prefetchGridMin     = 2
	prefetchGridMax     = 5
	prefetchGridDivisor = 8
)

// Request identifies one LOD tile: its origin chunk and detail level. A
// tile of width w at detail d covers w*2^d blocks per side.
type Request struct {
	ChunkX int
	ChunkZ int
	Detail uint8
}

func (r Request) String() string {
	return fmt.Sprintf("(%d,%d)@%d", r.ChunkX, r.ChunkZ, r.Detail)
}

// CellSize is the number of blocks one data column represents per side.
func (r Request) CellSize() int {
	return 1 << r.Detail
}

// Origin returns the block coordinate of the tile's minimum corner.
func (r Request) Origin() (x, z int) {
	return r.ChunkX * chunkSize, r.ChunkZ * chunkSize
}

// sampleCoord returns the block at the center of cell i.
func sampleCoord(origin, i, cellSize int) int {
	return origin + i*cellSize + cellSize/2
}

// stride returns the sampling stride at a detail level: 1 below start, then
// doubling per level up to maxStride and never wider than the tile.
func stride(detail, start, width int) int {
	if detail < start {
		return 1
	}
	return max(1, min(1<<min(2, detail-start+1), maxStride, width))
}

// blendCells converts a shoreline blend radius to whole cells.
func blendCells(maxBlend, cellSize int) int {
	if maxBlend <= 0 {
		return 0
	}
	return (maxBlend + cellSize - 1) / cellSize
}

// prefetchGrid is the number of prefetch points per tile side.
func prefetchGrid(width int) int {
	return min(prefetchGridMax, max(prefetchGridMin, width/prefetchGridDivisor))
}

// lerpBlock spreads grid point i of n across a span starting at origin.
func lerpBlock(origin, span, i, n int) int {
	if n <= 1 || span <= 1 {
		return origin
	}
	return origin + (span-1)*i/(n-1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
