package terrain

import "earthlod/internal/world"

const (
	canopyGrid     = 8
	canopyScaleMax = 8
	canopyGridMin  = 6
	canopyGridMax  = 24
)

// CanopyColumn is the slice of a tree crown that falls on one column.
// Trunk is empty for columns that are not a tree center.
type CanopyColumn struct {
	TrunkHeight  int
	LeafLift     int
	LeavesHeight int
	Leaves       world.Material
	Trunk        world.Material
}

// boostedChance raises a profile's base chance so sparse LOD grids still
// read as wooded.
func boostedChance(base int) int {
	if base <= 0 {
		return 0
	}
	return min(100, (base*3+1)/2)
}

// canopyGridSize returns the blue-noise cell width used at a cell size.
// Coarser tiles use wider cells so crowns stay visible.
func canopyGridSize(cellSize int) int {
	if cellSize < 1 {
		cellSize = 1
	}
	scale := min(canopyScaleMax, max(0, detailLevel(cellSize)-2))
	fromDetail := canopyGrid + scale*2
	fromCell := canopyGrid + max(-2, (cellSize-canopyGrid)/4)
	return clampInt(min(fromDetail, fromCell), canopyGridMin, canopyGridMax)
}

func centerRadius(base, grid int, h uint32) int {
	if base <= 0 {
		return 0
	}
	r := max(1, base*grid/canopyGrid)
	r = min(r, grid-1)
	return r + int((h>>16)&1)
}

// ResolveCanopy places the crown covering (x, z), if any. The nearest
// center in the surrounding 3x3 grid cells wins; ties keep the first center
// scanned.
func ResolveCanopy(x, z int, p *CanopyProfile, cellSize int) (CanopyColumn, bool) {
	chance := boostedChance(p.BaseChance)
	if chance <= 0 || p.BaseRadius <= 0 || !hasLeaves(p) {
		return CanopyColumn{}, false
	}
	grid := canopyGridSize(cellSize)
	cellX := floorDiv(x, grid)
	cellZ := floorDiv(z, grid)

	best := -1
	var centerHash uint32
	var centerX, centerZ, radius int
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			gx, gz := cellX+dx, cellZ+dz
			h := mixHash(gx, gz, canopySalt)
			if !hitsChance(h, chance) {
				continue
			}
			cx := gx*grid + floorMod(h, grid)
			cz := gz*grid + floorMod(h>>8, grid)
			r := centerRadius(p.BaseRadius, grid, h)
			dist := absInt(x-cx) + absInt(z-cz)
			if dist <= r && (best < 0 || dist < best) {
				best = dist
				centerHash = h
				centerX, centerZ = cx, cz
				radius = r
			}
		}
	}
	if best < 0 {
		return CanopyColumn{}, false
	}

	falloff := radius - best
	height := p.BaseHeight
	if falloff >= 2 {
		height++
	}
	if falloff >= 4 {
		height++
	}
	height += int((centerHash >> 19) & 1)
	if best == 0 {
		height++
	}
	height = min(height, p.MaxHeight)
	if height <= 0 {
		return CanopyColumn{}, false
	}

	col := CanopyColumn{
		LeavesHeight: height,
		Leaves:       leafMaterial(p, centerX, centerZ),
	}
	trunk := trunkHeight(p, centerHash)
	if best == 0 {
		col.TrunkHeight = trunk
		col.Trunk = trunkMaterial(p, centerX, centerZ, centerHash)
		return col, true
	}

	lift := max(1, trunk-max(0, best-1))
	if p.TallCanopy() {
		lift = max(2, lift)
	}
	if best > 1 && (centerHash>>20)&1 == 0 {
		lift = max(1, lift-1)
	}
	col.LeafLift = lift
	return col, true
}

func trunkHeight(p *CanopyProfile, h uint32) int {
	jitter := int((h >> 21) & 3)
	if jitter == 3 {
		jitter = 2
	}
	switch {
	case p.Mangrove:
		return 6 + jitter + int((h>>19)&1)
	case p.Jungle:
		height := 10 + jitter
		if (h>>18)&7 == 0 {
			height += 8
		}
		return height
	case p.TallCanopy():
		return min(5, 3+jitter+1)
	default:
		return 3 + jitter
	}
}

func hasLeaves(p *CanopyProfile) bool {
	return p.WindsweptForest || p.WoodedBadlands || p.WindsweptSavanna || p.SavannaPlateau ||
		p.SparseJungle || p.BambooJungle || p.Mangrove || p.DarkForest || p.CherryGrove ||
		p.Jungle || p.Taiga || p.Savanna || p.Swamp || p.Forest
}

func leafMaterial(p *CanopyProfile, x, z int) world.Material {
	switch {
	case p.WindsweptForest:
		return world.MaterialSpruceLeaves
	case p.WoodedBadlands:
		return world.MaterialOakLeaves
	case p.WindsweptSavanna, p.SavannaPlateau:
		return world.MaterialAcaciaLeaves
	case p.SparseJungle, p.BambooJungle:
		return world.MaterialJungleLeaves
	case p.Mangrove:
		return world.MaterialMangroveLeaves
	case p.DarkForest:
		return world.MaterialDarkOakLeaves
	case p.CherryGrove:
		return world.MaterialCherryLeaves
	case p.Jungle:
		return world.MaterialJungleLeaves
	case p.Taiga:
		return world.MaterialSpruceLeaves
	case p.Savanna:
		return world.MaterialAcaciaLeaves
	case p.Swamp:
		return world.MaterialOakLeaves
	case p.Forest:
		if (mixHash(x, z, canopyVariantSalt)>>28)&3 == 0 {
			return world.MaterialBirchLeaves
		}
		return world.MaterialOakLeaves
	default:
		return ""
	}
}

func trunkMaterial(p *CanopyProfile, x, z int, centerHash uint32) world.Material {
	switch {
	case p.WindsweptForest:
		return world.MaterialSpruceLog
	case p.WoodedBadlands:
		return world.MaterialOakLog
	case p.WindsweptSavanna, p.SavannaPlateau:
		return world.MaterialAcaciaLog
	case p.SparseJungle, p.BambooJungle:
		return world.MaterialJungleLog
	case p.Mangrove:
		return world.MaterialMangroveLog
	case p.DarkForest:
		return world.MaterialDarkOakLog
	case p.CherryGrove:
		return world.MaterialCherryLog
	case p.Jungle:
		return world.MaterialJungleLog
	case p.Taiga:
		return world.MaterialSpruceLog
	case p.Savanna:
		return world.MaterialAcaciaLog
	case p.Swamp:
		return world.MaterialOakLog
	case p.Forest:
		if ((mixHash(x, z, canopyVariantSalt)^centerHash)>>28)&3 == 0 {
			return world.MaterialBirchLog
		}
		return world.MaterialOakLog
	default:
		return world.MaterialOakLog
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
