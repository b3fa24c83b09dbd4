package lod

import (
	"errors"
	"fmt"
	"log"

	"earthlod/internal/config"
	"earthlod/internal/geo"
	"earthlod/internal/prefetch"
	"earthlod/internal/terrain"
	"earthlod/internal/water"
	"earthlod/internal/weather"
	"earthlod/internal/world"
)

// WaterSource resolves ground and water heights. *water.Resolver satisfies it.
type WaterSource interface {
	SampleCover(x, z int) geo.CoverClass
	Fast(x, z int, cover geo.CoverClass) water.Column
	Detailed(x, z int, cover geo.CoverClass) water.Column
	DetailedEnabled() bool
	MaxBlend() int
}

// BiomeSource picks the biome of a column with known cover.
type BiomeSource interface {
	BiomeWithCover(x, z int, cover geo.CoverClass) world.BiomeID
}

// Options wires a Builder. Weather and Warmer are optional.
type Options struct {
	World    config.WorldConfig
	LOD      config.LODConfig
	Water    WaterSource
	Biomes   BiomeSource
	Synth    *terrain.Synthesizer
	Registry world.Registry
	Weather  weather.Service
	Warmer   *prefetch.Warmer
	Logger   *log.Logger
}

// Builder synthesizes LOD tiles. It is safe for concurrent use as long as
// every goroutine brings its own WorkerContext.
type Builder struct {
	world        config.WorldConfig
	lod          config.LODConfig
	water        WaterSource
	biomes       BiomeSource
	synth        *terrain.Synthesizer
	registry     world.Registry
	weather      weather.Service
	warmer       *prefetch.Warmer
	logger       *log.Logger
	defaultBiome world.BiomeID
}

// TileStats summarizes one BuildTile call.
type TileStats struct {
	Request         Request
	Width           int
	CoverStride     int
	WaterStride     int
	CoverSamples    int
	DetailedWater   bool
	DetailedSamples int
	WaterColumns    int
	Layers          int
}

func NewBuilder(opts Options) (*Builder, error) {
	if opts.Water == nil || opts.Biomes == nil || opts.Synth == nil || opts.Registry == nil {
		return nil, errors.New("lod builder requires water, biome, synthesizer and registry")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "lod ", log.LstdFlags|log.Lmicroseconds)
	}
	defaultBiome := world.BiomePlains
	if opts.World.DefaultBiome != "" {
		id, exact, err := world.ResolveBiome(opts.World.DefaultBiome)
		switch {
		case err != nil:
			logger.Printf("default biome %q: %v, using %q", opts.World.DefaultBiome, err, defaultBiome)
		case !exact:
			logger.Printf("default biome %q resolved to %q", opts.World.DefaultBiome, id)
			defaultBiome = id
		default:
			defaultBiome = id
		}
	}
	return &Builder{
		world:        opts.World,
		lod:          opts.LOD,
		water:        opts.Water,
		biomes:       opts.Biomes,
		synth:        opts.Synth,
		registry:     opts.Registry,
		weather:      opts.Weather,
		warmer:       opts.Warmer,
		logger:       logger,
		defaultBiome: defaultBiome,
	}, nil
}

// DefaultBiome is the biome used when a representation is missing.
func (b *Builder) DefaultBiome() world.BiomeID {
	return b.defaultBiome
}

// NewWorkerContext returns a fresh context bound to the builder's registry.
func (b *Builder) NewWorkerContext() *WorkerContext {
	return NewWorkerContext(b.registry, b.defaultBiome, b.logger)
}

func (b *Builder) detailedAllowed(detail int) bool {
	return b.water.DetailedEnabled() && detail <= detailedWaterMaxDetail
}

// tileScratch holds the per-tile working arrays.
type tileScratch struct {
	width    int
	covers   []geo.CoverClass
	fast     []water.Column
	cols     []water.Column
	detailed []bool
}

func newTileScratch(width int) *tileScratch {
	n := width * width
	return &tileScratch{
		width:    width,
		covers:   make([]geo.CoverClass, n),
		fast:     make([]water.Column, n),
		cols:     make([]water.Column, n),
		detailed: make([]bool, n),
	}
}

// BuildTile synthesizes every column of req into sink. Columns are visited
// row-major (z, then x); grouped sampling relies on that order.
func (b *Builder) BuildTile(wc *WorkerContext, req Request, sink world.Sink) (TileStats, error) {
	stats := TileStats{Request: req}
	if wc == nil {
		return stats, errors.New("nil worker context")
	}
	if sink == nil {
		return stats, errors.New("nil sink")
	}
	width := sink.Width()
	if width <= 0 {
		return stats, fmt.Errorf("tile %v: sink width %d must be positive", req, width)
	}
	detail := int(req.Detail)
	if detail > b.lod.MaxDetail {
		return stats, fmt.Errorf("tile %v: detail %d exceeds max %d", req, detail, b.lod.MaxDetail)
	}
	stats.Width = width

	cellSize := req.CellSize()
	originX, originZ := req.Origin()
	snapshot := weather.Capture(b.weather)
	s := newTileScratch(width)

	b.resolveWater(s, originX, originZ, cellSize, detail, &stats)

	minY, maxY := b.world.MinY, b.world.MaxY()-1
	for lz := 0; lz < width; lz++ {
		for lx := 0; lx < width; lx++ {
			i := lz*width + lx
			x, z := sampleCoord(originX, lx, cellSize), sampleCoord(originZ, lz, cellSize)
			col := s.cols[i]

			surface := clampInt(col.TerrainSurface, minY, maxY)
			waterSurface := clampInt(col.WaterSurface, minY, maxY)
			underwater := col.HasWater && waterSurface > surface
			if underwater {
				stats.WaterColumns++
			}
			vegetationSurface := surface
			if s.detailed[i] && col.IsOcean {
				vegetationSurface = clampInt(s.fast[i].TerrainSurface, minY, maxY)
			}

			cover := s.covers[i]
			biome := wc.canonicalBiome(b.biomes.BiomeWithCover(x, z, cover))
			wc.layers = b.synth.Synthesize(terrain.ColumnInput{
				WorldX:             x,
				WorldZ:             z,
				SurfaceY:           surface,
				VegetationSurfaceY: vegetationSurface,
				WaterSurface:       waterSurface,
				Underwater:         underwater,
				Cover:              cover,
				Biome:              biome,
				CellSize:           cellSize,
				SlopeDiff:          slopeDiff(s, lx, lz, cellSize),
				Weather:            snapshot,
			}, wc.layers)
			stats.Layers += len(wc.layers)
			sink.SetColumn(lx, lz, wc.convert(wc.layers))
		}
	}
	return stats, nil
}

// resolveWater fills the cover, fast and final water arrays of a tile.
// Detailed results replace fast ones only on water-bearing cells, so land
// keeps its fast height at every detail level.
func (b *Builder) resolveWater(s *tileScratch, originX, originZ, cellSize, detail int, stats *TileStats) {
	width := s.width
	stats.CoverStride = stride(detail, coverStrideStart, width)
	stats.CoverSamples = b.sampleCovers(s, originX, originZ, cellSize, stats.CoverStride)

	for lz := 0; lz < width; lz++ {
		for lx := 0; lx < width; lx++ {
			i := lz*width + lx
			x, z := sampleCoord(originX, lx, cellSize), sampleCoord(originZ, lz, cellSize)
			s.fast[i] = b.water.Fast(x, z, s.covers[i])
			s.cols[i] = s.fast[i]
		}
	}

	if !b.detailedAllowed(detail) {
		return
	}
	active := hasWaterInTile(s)
	if !active {
		active = b.hasWaterInBorder(originX, originZ, width, cellSize, blendCells(b.water.MaxBlend(), cellSize))
	}
	if active {
		stats.DetailedWater = true
		stats.WaterStride = stride(detail, detailedWaterStrideStart, width)
		stats.DetailedSamples = b.applyDetailedWater(s, originX, originZ, cellSize, stats.WaterStride)
	}
}

// sampleCovers fills the cover array, reusing one sample per stride block.
func (b *Builder) sampleCovers(s *tileScratch, originX, originZ, cellSize, step int) int {
	samples := 0
	width := s.width
	for gz := 0; gz < width; gz += step {
		for gx := 0; gx < width; gx += step {
			cover := b.water.SampleCover(sampleCoord(originX, gx, cellSize), sampleCoord(originZ, gz, cellSize))
			samples++
			for lz := gz; lz < min(gz+step, width); lz++ {
				for lx := gx; lx < min(gx+step, width); lx++ {
					s.covers[lz*width+lx] = cover
				}
			}
		}
	}
	return samples
}

// applyDetailedWater resolves detailed water per water-bearing column at
// stride 1. At wider strides the first water-bearing cell of each group is
// resolved and its result copied to the group's other water-bearing cells.
func (b *Builder) applyDetailedWater(s *tileScratch, originX, originZ, cellSize, step int) int {
	width := s.width
	samples := 0
	if step <= 1 {
		for lz := 0; lz < width; lz++ {
			for lx := 0; lx < width; lx++ {
				i := lz*width + lx
				if !s.covers[i].MayHoldWater() {
					continue
				}
				s.cols[i] = b.water.Detailed(sampleCoord(originX, lx, cellSize), sampleCoord(originZ, lz, cellSize), s.covers[i])
				s.detailed[i] = true
				samples++
			}
		}
		return samples
	}

	for gz := 0; gz < width; gz += step {
		for gx := 0; gx < width; gx += step {
			var sampled water.Column
			found := false
			for lz := gz; lz < min(gz+step, width); lz++ {
				for lx := gx; lx < min(gx+step, width); lx++ {
					i := lz*width + lx
					if !s.covers[i].MayHoldWater() {
						continue
					}
					if !found {
						sampled = b.water.Detailed(sampleCoord(originX, lx, cellSize), sampleCoord(originZ, lz, cellSize), s.covers[i])
						found = true
						samples++
					}
					s.cols[i] = sampled
					s.detailed[i] = true
				}
			}
		}
	}
	return samples
}

func waterish(cover geo.CoverClass, fast water.Column) bool {
	switch cover {
	case geo.CoverWater, geo.CoverMangrove:
		return true
	case geo.CoverNoData:
		return fast.HasWater
	}
	return false
}

func hasWaterInTile(s *tileScratch) bool {
	for i, cover := range s.covers {
		if waterish(cover, s.fast[i]) {
			return true
		}
	}
	return false
}

// hasWaterInBorder samples the ring of border cells around the tile for
// water-bearing cover.
func (b *Builder) hasWaterInBorder(originX, originZ, width, cellSize, border int) bool {
	if border <= 0 {
		return false
	}
	for lz := -border; lz < width+border; lz++ {
		for lx := -border; lx < width+border; lx++ {
			if lx >= 0 && lx < width && lz >= 0 && lz < width {
				continue
			}
			x, z := sampleCoord(originX, lx, cellSize), sampleCoord(originZ, lz, cellSize)
			cover := b.water.SampleCover(x, z)
			if cover == geo.CoverNoData {
				if b.water.Fast(x, z, cover).HasWater {
					return true
				}
				continue
			}
			if cover.MayHoldWater() {
				return true
			}
		}
	}
	return false
}

// slopeDiff estimates the local slope from the four neighbours' fast-mode
// surfaces, clamped at tile edges and normalized by cell size.
func slopeDiff(s *tileScratch, lx, lz, cellSize int) int {
	width := s.width
	at := func(x, z int) int {
		x = clampInt(x, 0, width-1)
		z = clampInt(z, 0, width-1)
		return s.fast[z*width+x].TerrainSurface
	}
	center := at(lx, lz)
	maxDiff := 0
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		diff := at(lx+d[0], lz+d[1]) - center
		if diff < 0 {
			diff = -diff
		}
		maxDiff = max(maxDiff, diff)
	}
	return maxDiff * terrain.SlopeStep / max(1, cellSize)
}

// Prefetch queues cache warming for a tile of the given width. It returns
// the number of tasks accepted.
func (b *Builder) Prefetch(req Request, width int) int {
	if !b.warmer.Enabled() || width <= 0 {
		return 0
	}
	cellSize := req.CellSize()
	originX, originZ := req.Origin()
	span := width * cellSize
	grid := prefetchGrid(width)

	accepted := 0
	seen := make(map[[2]int]struct{}, grid*grid)
	for gz := 0; gz < grid; gz++ {
		for gx := 0; gx < grid; gx++ {
			bx := lerpBlock(originX, span, gx, grid)
			bz := lerpBlock(originZ, span, gz, grid)
			chunk := [2]int{floorDiv(bx, chunkSize), floorDiv(bz, chunkSize)}
			if _, ok := seen[chunk]; ok {
				continue
			}
			seen[chunk] = struct{}{}
			accepted += b.warmer.ForChunk(chunk[0], chunk[1])
		}
	}
	if b.detailedAllowed(int(req.Detail)) && b.waterNearArea(originX, originZ, span, grid) &&
		b.warmer.WaterRegion(originX, originZ, originX+span-1, originZ+span-1) {
		accepted++
	}
	return accepted
}

// waterNearArea samples a coarse grid over the tile footprint widened by the
// shoreline blend radius and reports whether any sample may carry water.
func (b *Builder) waterNearArea(originX, originZ, span, grid int) bool {
	border := b.water.MaxBlend()
	minX, minZ := originX-border, originZ-border
	extent := span + 2*border
	n := grid + 2
	for gz := 0; gz < n; gz++ {
		for gx := 0; gx < n; gx++ {
			x := lerpBlock(minX, extent, gx, n)
			z := lerpBlock(minZ, extent, gz, n)
			cover := b.water.SampleCover(x, z)
			if waterish(cover, b.water.Fast(x, z, cover)) {
				return true
			}
		}
	}
	return false
}
