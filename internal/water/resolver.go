package water

import (
	"math"

	"earthlod/internal/config"
	"earthlod/internal/geo"
)

// Sampler is the subset of the geo layer the resolver reads from.
type Sampler interface {
	SampleElevation(x, z int, worldScale float64) float64
	SampleCoverClass(x, z int, worldScale float64) geo.CoverClass
	PrefetchTiles(kind geo.Kind, centerX, centerZ int, worldScale float64, radius int)
	PrefetchArea(kind geo.Kind, minX, minZ, maxX, maxZ int, worldScale float64)
}

// Column describes the ground and water at one coordinate. WaterSurface is
// only meaningful when HasWater is set.
type Column struct {
	TerrainSurface int
	WaterSurface   int
	HasWater       bool
	IsOcean        bool
}

// Underwater reports whether water stands above the terrain.
func (c Column) Underwater() bool {
	return c.HasWater && c.WaterSurface > c.TerrainSurface
}

// Resolver estimates terrain and water heights. Fast mode looks at a single
// coordinate; detailed mode also blends shorelines using nearby cells. Both
// agree exactly outside the blend band.
type Resolver struct {
	src   Sampler
	world config.WorldConfig
	water config.WaterConfig
}

func NewResolver(src Sampler, world config.WorldConfig, water config.WaterConfig) *Resolver {
	return &Resolver{src: src, world: world, water: water}
}

// WorldScale returns meters per block.
func (r *Resolver) WorldScale() float64 {
	return r.world.WorldScale
}

// DetailedEnabled reports whether shoreline blending is configured on.
func (r *Resolver) DetailedEnabled() bool {
	return r.water.DetailedResolver
}

// MaxBlend is the widest shoreline band in blocks.
func (r *Resolver) MaxBlend() int {
	if r.water.RiverLakeShoreBlend > r.water.OceanShoreBlend {
		return r.water.RiverLakeShoreBlend
	}
	return r.water.OceanShoreBlend
}

// SampleCover reads land cover at the configured world scale.
func (r *Resolver) SampleCover(x, z int) geo.CoverClass {
	return r.src.SampleCoverClass(x, z, r.world.WorldScale)
}

// Height converts meters to a block height. Land rounds up and seabed rounds
// down so coastlines never drift toward the water.
func (r *Resolver) Height(elevation float64) int {
	if elevation >= 0 {
		return int(math.Ceil(elevation*r.world.TerrestrialHeightScale/r.world.WorldScale)) + r.world.HeightOffset
	}
	return int(math.Floor(elevation*r.world.OceanicHeightScale/r.world.WorldScale)) + r.world.HeightOffset
}

// SurfaceHeight samples elevation and converts it.
func (r *Resolver) SurfaceHeight(x, z int) int {
	return r.Height(r.src.SampleElevation(x, z, r.world.WorldScale))
}

// Resolve dispatches to Fast or Detailed.
func (r *Resolver) Resolve(x, z int, cover geo.CoverClass, detailed bool) Column {
	if detailed {
		return r.Detailed(x, z, cover)
	}
	return r.Fast(x, z, cover)
}

// Fast classifies a single coordinate from its cover class and elevation.
func (r *Resolver) Fast(x, z int, cover geo.CoverClass) Column {
	col := r.fast(x, z, cover)
	col.TerrainSurface = r.CinematicSurface(col.TerrainSurface, col.WaterSurface, col.HasWater)
	return col
}

func (r *Resolver) fast(x, z int, cover geo.CoverClass) Column {
	elevation := r.src.SampleElevation(x, z, r.world.WorldScale)
	height := r.Height(elevation)

	switch cover {
	case geo.CoverWater, geo.CoverMangrove:
		if elevation <= 0 {
			return r.ocean(height)
		}
		return Column{
			TerrainSurface: height - r.water.LakeDepth,
			WaterSurface:   height,
			HasWater:       true,
		}
	case geo.CoverNoData:
		if elevation <= 0 {
			return r.ocean(height)
		}
	}
	return Column{TerrainSurface: height, WaterSurface: height}
}

func (r *Resolver) ocean(height int) Column {
	seabed := height
	if seabed > r.world.SeaLevel-1 {
		seabed = r.world.SeaLevel - 1
	}
	return Column{
		TerrainSurface: seabed,
		WaterSurface:   r.world.SeaLevel,
		HasWater:       true,
		IsOcean:        true,
	}
}

// Detailed refines Fast near shorelines. Water cells close to land get a
// shallower bed; land cells close to water slope down toward its surface.
func (r *Resolver) Detailed(x, z int, cover geo.CoverClass) Column {
	base := r.fast(x, z, cover)
	radius := r.MaxBlend()
	if radius <= 0 {
		return r.finish(base)
	}

	dist, neighbour, found := r.nearestOpposite(x, z, base.HasWater, radius)
	if !found {
		return r.finish(base)
	}

	blend := r.water.RiverLakeShoreBlend
	ocean := base.IsOcean
	if !base.HasWater {
		ocean = neighbour.IsOcean
	}
	if ocean {
		blend = r.water.OceanShoreBlend
	}
	if dist >= blend {
		return r.finish(base)
	}

	col := base
	if base.HasWater {
		if base.IsOcean {
			shelf := r.world.SeaLevel - 1 - int(math.Floor(float64(dist)*r.water.ShelfSlope))
			if shelf > col.TerrainSurface {
				col.TerrainSurface = shelf
			}
		} else {
			depth := 1 + dist*(r.water.LakeDepth-1)/blend
			if bed := base.WaterSurface - depth; bed > col.TerrainSurface {
				col.TerrainSurface = bed
			}
		}
		return r.finish(col)
	}

	target := neighbour.WaterSurface
	if base.TerrainSurface > target {
		drop := base.TerrainSurface - target
		col.TerrainSurface = target + (drop*dist+blend-1)/blend
	}
	return r.finish(col)
}

func (r *Resolver) finish(col Column) Column {
	col.TerrainSurface = r.CinematicSurface(col.TerrainSurface, col.WaterSurface, col.HasWater)
	return col
}

// nearestOpposite scans a square window for the closest cell whose wetness
// differs from wet. Distance is Chebyshev in blocks.
func (r *Resolver) nearestOpposite(x, z int, wet bool, radius int) (int, Column, bool) {
	step := radius / 8
	if step < 1 {
		step = 1
	}
	best := radius + 1
	var bestCol Column
	for dz := -radius; dz <= radius; dz += step {
		for dx := -radius; dx <= radius; dx += step {
			d := max(abs(dx), abs(dz))
			if d == 0 || d >= best {
				continue
			}
			nx, nz := x+dx, z+dz
			col := r.fast(nx, nz, r.SampleCover(nx, nz))
			if col.HasWater != wet {
				best = d
				bestCol = col
			}
		}
	}
	if best > radius {
		return 0, Column{}, false
	}
	return best, bestCol, true
}

// CinematicSurface lifts deep sea floors so they sit at most
// CinematicMaxSeaDepth blocks under the water, without breaking the surface.
func (r *Resolver) CinematicSurface(surface, waterSurface int, hasWater bool) int {
	if !r.world.CinematicMode || !hasWater || waterSurface <= surface {
		return surface
	}
	depth := r.water.CinematicMaxSeaDepth
	if depth <= 0 {
		depth = 16
	}
	floor := waterSurface - depth
	if surface < floor {
		surface = floor
		if surface >= waterSurface {
			surface = waterSurface - 1
		}
	}
	return surface
}

// PrefetchRegion warms elevation and cover tiles for a block rectangle grown
// by the blend radius.
func (r *Resolver) PrefetchRegion(minX, minZ, maxX, maxZ int) {
	pad := r.MaxBlend()
	for _, kind := range []geo.Kind{geo.KindElevation, geo.KindCover} {
		r.src.PrefetchArea(kind, minX-pad, minZ-pad, maxX+pad, maxZ+pad, r.world.WorldScale)
	}
}

// PrefetchForChunk warms tiles around a chunk's center.
func (r *Resolver) PrefetchForChunk(chunkX, chunkZ, radius int) {
	cx, cz := chunkX*16+8, chunkZ*16+8
	for _, kind := range []geo.Kind{geo.KindElevation, geo.KindCover} {
		r.src.PrefetchTiles(kind, cx, cz, r.world.WorldScale, radius)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
