package terrain

import "earthlod/internal/world"

const (
	waterVegetationMinDepth  = 1
	waterVegetationMaxHeight = 4
	// WaterVegetationMaxDetail is the coarsest detail level that still
	// places submerged plants.
	WaterVegetationMaxDetail = 4
	kelpMinDepth             = 6
)

// WaterVegetation is a submerged clump rooted on the water floor.
type WaterVegetation struct {
	Height   int
	Material world.Material
}

// ResolveWaterVegetation decides whether a clump grows at (x, z) given the
// water depth above the floor.
func ResolveWaterVegetation(x, z, depth int, p *CanopyProfile) (WaterVegetation, bool) {
	if depth < waterVegetationMinDepth || p.WaterVegetationChance <= 0 {
		return WaterVegetation{}, false
	}
	h := mixHash(x, z, waterVegetationSalt)
	if !hitsChance(h, p.WaterVegetationChance) {
		return WaterVegetation{}, false
	}

	material := world.MaterialSeagrass
	if chance := kelpChance(p, depth); chance > 0 && int((h>>18)&0xFF) < chance*255/100 {
		material = world.MaterialKelp
	}
	// Depth 1 still takes a one-block plant.
	limit := min(waterVegetationMaxHeight, max(1, depth-1))
	height := min(1+int((h>>12)&3), limit)
	return WaterVegetation{Height: height, Material: material}, true
}

func kelpChance(p *CanopyProfile, depth int) int {
	if p.River || depth < kelpMinDepth {
		return 0
	}
	switch {
	case p.WarmOcean:
		return 15
	case p.LukewarmOcean, p.DeepLukewarmOcean:
		return 25
	case p.Ocean:
		return 35
	default:
		return 0
	}
}
