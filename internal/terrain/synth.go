package terrain

import (
	"earthlod/internal/config"
	"earthlod/internal/geo"
	"earthlod/internal/weather"
	"earthlod/internal/world"
)

// ColumnInput carries everything the synthesizer needs for one column.
// SurfaceY, VegetationSurfaceY and WaterSurface are world heights.
type ColumnInput struct {
	WorldX int
	WorldZ int

	SurfaceY int
	// VegetationSurfaceY is the floor submerged plants root on. It differs
	// from SurfaceY where detailed water raised the seabed.
	VegetationSurfaceY int
	WaterSurface       int
	// Underwater is set when the column has water above its surface.
	Underwater bool

	Cover    geo.CoverClass
	Biome    world.BiomeID
	CellSize int
	// SlopeDiff is the scaled neighbour height difference.
	SlopeDiff int
	Weather   weather.Snapshot
}

// Synthesizer turns column inputs into ordered layer stacks.
type Synthesizer struct {
	minY        int
	absoluteTop int
	profiles    *ProfileTable
}

func NewSynthesizer(cfg config.WorldConfig, profiles *ProfileTable) *Synthesizer {
	if profiles == nil {
		profiles = Profiles
	}
	return &Synthesizer{
		minY:        cfg.MinY,
		absoluteTop: cfg.Height,
		profiles:    profiles,
	}
}

// AbsoluteTop is the height of every emitted column.
func (s *Synthesizer) AbsoluteTop() int {
	return s.absoluteTop
}

func (s *Synthesizer) Profile(id world.BiomeID) *CanopyProfile {
	return s.profiles.Lookup(id)
}

// LayerTop converts a world height to the exclusive layer-local top of the
// block at that height.
func (s *Synthesizer) LayerTop(y int) int {
	return clampInt(y-s.minY+1, 0, s.absoluteTop)
}

type columnBuilder struct {
	layers []world.Layer
	last   int
	top    int
	biome  world.BiomeID
}

func (b *columnBuilder) push(end int, material world.Material) {
	end = min(end, b.top)
	if end <= b.last {
		return
	}
	b.layers = append(b.layers, world.Layer{
		Start:    b.last,
		End:      end,
		Light:    world.SkyLight,
		Material: material,
		Biome:    b.biome,
	})
	b.last = end
}

func (b *columnBuilder) pushCanopy(c CanopyColumn) {
	if c.TrunkHeight > 0 && c.Trunk != "" {
		b.push(b.last+c.TrunkHeight, c.Trunk)
	}
	if c.LeafLift > 0 {
		b.push(b.last+c.LeafLift, world.MaterialAir)
	}
	b.push(b.last+c.LeavesHeight, c.Leaves)
}

// Synthesize appends the layers of one column to dst[:0] and returns the
// result. The layers always tile [0, AbsoluteTop()) exactly.
func (s *Synthesizer) Synthesize(in ColumnInput, dst []world.Layer) []world.Layer {
	b := columnBuilder{layers: dst[:0], top: s.absoluteTop, biome: in.Biome}
	profile := s.profiles.Lookup(in.Biome)
	palette := PaletteFor(profile, in.WorldX, in.WorldZ)
	cellSize := max(1, in.CellSize)

	surfaceTop := s.LayerTop(in.SurfaceY)
	topLayerBase := max(0, surfaceTop-1)

	if profile.Badlands && in.SlopeDiff >= BadlandsSlopeDiff && !in.Underwater {
		bandDepth := min(badlandsBandDepth, in.SurfaceY-s.minY+1)
		bandBottomY := max(s.minY, in.SurfaceY-bandDepth+1)
		b.push(min(s.LayerTop(bandBottomY), topLayerBase), palette.Filler)
		for b.last < topLayerBase {
			segTop := min(b.last+badlandsBandHeight, topLayerBase)
			b.push(segTop, badlandsBandMaterial(in.WorldX, in.WorldZ, s.minY+segTop-1))
		}
	} else {
		b.push(topLayerBase, palette.Filler)
	}

	top := palette.Top
	switch {
	case in.Underwater:
		top = palette.UnderwaterTop
	case in.Weather.ShouldApplySnow(in.WorldX, in.WorldZ):
		top = world.MaterialSnowBlock
	}
	b.push(surfaceTop, top)

	mangrove := profile.Mangrove || in.Cover == geo.CoverMangrove
	var canopy CanopyColumn
	hasCanopy := false
	if (in.Cover == geo.CoverTree && !in.Underwater) || mangrove {
		canopyProfile := profile
		if mangrove && !profile.Mangrove {
			canopyProfile = s.profiles.Lookup(world.BiomeMangroveSwamp)
		}
		canopy, hasCanopy = ResolveCanopy(in.WorldX, in.WorldZ, canopyProfile, cellSize)
	}
	deferCanopy := hasCanopy && in.Underwater
	if hasCanopy && !deferCanopy {
		b.pushCanopy(canopy)
	}

	if in.Underwater {
		waterTop := s.LayerTop(in.WaterSurface)
		var veg WaterVegetation
		hasVeg := false
		if detailLevel(cellSize) <= WaterVegetationMaxDetail {
			veg, hasVeg = ResolveWaterVegetation(in.WorldX, in.WorldZ, in.WaterSurface-in.VegetationSurfaceY, profile)
		}
		if hasVeg {
			vegBase := clampInt(s.LayerTop(in.VegetationSurfaceY), b.last, max(b.last, waterTop))
			b.push(vegBase, world.MaterialWater)
			b.push(min(waterTop, b.last+veg.Height), veg.Material)
		}
		b.push(waterTop, world.MaterialWater)
	}

	if deferCanopy {
		b.pushCanopy(canopy)
	}

	b.push(s.absoluteTop, world.MaterialAir)
	return b.layers
}
