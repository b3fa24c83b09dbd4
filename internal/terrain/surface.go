package terrain

import "earthlod/internal/world"

const (
	badlandsBandDepth  = 16
	badlandsBandHeight = 3
	// BadlandsSlopeDiff is the scaled neighbour height difference at which
	// badlands columns switch to banded terracotta.
	BadlandsSlopeDiff = 3
	// SlopeStep scales raw neighbour differences before dividing by cell size.
	SlopeStep = 4

	badlandsBandRegion = 32
)

// SurfacePalette is the crust a biome lays on its columns.
type SurfacePalette struct {
	Top           world.Material
	UnderwaterTop world.Material
	Filler        world.Material
}

var (
	beachPalette    = SurfacePalette{world.MaterialSand, world.MaterialSand, world.MaterialSand}
	badlandsPalette = SurfacePalette{world.MaterialRedSand, world.MaterialRedSand, world.MaterialTerracotta}
	desertPalette   = SurfacePalette{world.MaterialSand, world.MaterialSand, world.MaterialSandstone}
	mangrovePalette = SurfacePalette{world.MaterialMud, world.MaterialMud, world.MaterialDirt}
	stonePalette    = SurfacePalette{world.MaterialStone, world.MaterialStone, world.MaterialStone}
	gravelPalette   = SurfacePalette{world.MaterialGravel, world.MaterialGravel, world.MaterialStone}
	snowyPalette    = SurfacePalette{world.MaterialSnowBlock, world.MaterialSnowBlock, world.MaterialDirt}
	grassPalette    = SurfacePalette{world.MaterialGrass, world.MaterialDirt, world.MaterialDirt}
)

var badlandsBands = [...]world.Material{
	world.MaterialOrangeTerracotta,
	world.MaterialTerracotta,
	world.MaterialYellowTerracotta,
	world.MaterialBrownTerracotta,
	world.MaterialTerracotta,
	world.MaterialRedTerracotta,
	world.MaterialWhiteTerracotta,
	world.MaterialOrangeTerracotta,
	world.MaterialLightGrayTerracotta,
}

// PaletteFor returns the surface palette of a biome at (x, z). Only ocean
// and river floors vary by coordinate.
func PaletteFor(p *CanopyProfile, x, z int) SurfacePalette {
	id := p.Biome
	switch {
	case p.Ocean || p.River:
		floor := oceanFloorMaterial(x, z)
		return SurfacePalette{floor, floor, floor}
	case id == world.BiomeBeach || id == world.BiomeSnowyBeach:
		return beachPalette
	case p.Badlands:
		return badlandsPalette
	case id == world.BiomeDesert:
		return desertPalette
	case p.Mangrove:
		return mangrovePalette
	case p.Swamp:
		return grassPalette
	case id == world.BiomeStonyPeaks || id == world.BiomeStonyShore:
		return stonePalette
	case id == world.BiomeWindsweptGravellyHills:
		return gravelPalette
	case isSnowySurface(id):
		return snowyPalette
	default:
		return grassPalette
	}
}

func isSnowySurface(id world.BiomeID) bool {
	switch id {
	case world.BiomeSnowyPlains, world.BiomeSnowyTaiga, world.BiomeSnowySlopes,
		world.BiomeGrove, world.BiomeIceSpikes, world.BiomeFrozenPeaks, world.BiomeJaggedPeaks:
		return true
	}
	return false
}

func oceanFloorMaterial(x, z int) world.Material {
	rng := newDeterministicRNG(seedFromCoords(x, 0, z) ^ oceanFloorSalt)
	switch roll := rng.nextInt(100); {
	case roll < 10:
		return world.MaterialGravel
	case roll < 15:
		return world.MaterialClay
	default:
		return world.MaterialSand
	}
}

// badlandsBandMaterial picks the terracotta color of the band whose top sits
// at world height bandY. Neighbouring regions shift the cycle so stripes do
// not line up across a whole mesa.
func badlandsBandMaterial(x, z, bandY int) world.Material {
	offset := int(hash3(floorDiv(x, badlandsBandRegion), 0, floorDiv(z, badlandsBandRegion)) % 3)
	idx := floorDiv(bandY, badlandsBandHeight) + offset
	n := len(badlandsBands)
	return badlandsBands[((idx%n)+n)%n]
}
