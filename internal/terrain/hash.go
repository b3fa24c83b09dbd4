package terrain

import "math/bits"

const (
	canopySalt          uint32 = 0x6D2B79F5
	canopyVariantSalt   uint32 = 0x7F4A7C15
	waterVegetationSalt uint32 = 0x3C6EF35F

	oceanFloorSalt int64 = 0x6F1D5E3A2B9C4D1E
)

// mixHash is a 32-bit avalanche hash of a grid coordinate and salt. Every
// canopy and vegetation decision is derived from its bit ranges.
func mixHash(x, z int, seed uint32) uint32 {
	h := uint32(x)*0x1F1F1F1F ^ uint32(z)*0x9E3779B9 ^ seed*0x27D4EB2D
	h ^= h >> 15
	h *= 0x85EBCA6B
	h ^= h >> 13
	h *= 0xC2B2AE35
	h ^= h >> 16
	return h
}

// hitsChance reports whether the top byte of h falls under percent.
func hitsChance(h uint32, percent int) bool {
	return int((h>>24)&0xFF) < percent*255/100
}

// seedFromCoords is the block-position seed used for per-block surface
// variation.
func seedFromCoords(x, y, z int) int64 {
	seed := int64(int32(x*3129871)) ^ int64(z)*116129781 ^ int64(y)
	seed = seed*seed*42317861 + seed*11
	return seed >> 16
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

type deterministicRNG struct {
	state uint64
}

func newDeterministicRNG(seed int64) *deterministicRNG {
	state := uint64(seed)
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &deterministicRNG{state: state}
}

func (r *deterministicRNG) next() uint64 {
	r.state ^= r.state << 7
	r.state ^= r.state >> 9
	r.state ^= r.state << 8
	return r.state
}

func (r *deterministicRNG) nextInt(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

func floorMod(h uint32, n int) int {
	m := int(int32(h)) % n
	if m < 0 {
		m += n
	}
	return m
}

// detailLevel returns log2 of a power-of-two cell size.
func detailLevel(cellSize int) int {
	if cellSize <= 1 {
		return 0
	}
	return bits.TrailingZeros(uint(cellSize))
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

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
