package lod

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"earthlod/internal/biomes"
	"earthlod/internal/config"
	"earthlod/internal/geo"
	"earthlod/internal/prefetch"
	"earthlod/internal/terrain"
	"earthlod/internal/water"
	"earthlod/internal/world"
)

// coastGeo is ocean west of coastX and flat temperate grassland east of it.
type coastGeo struct {
	coastX int
}

func (c coastGeo) SampleElevation(x, z int, worldScale float64) float64 {
	if x < c.coastX {
		return -200
	}
	return 350
}

func (c coastGeo) SampleCoverClass(x, z int, worldScale float64) geo.CoverClass {
	if x < c.coastX {
		return geo.CoverWater
	}
	return geo.CoverGrassland
}

func (c coastGeo) SampleClimateClass(x, z int, worldScale float64) geo.ClimateClass {
	return geo.ClimateCf
}

func (c coastGeo) PrefetchTiles(kind geo.Kind, centerX, centerZ int, worldScale float64, radius int) {}

func (c coastGeo) PrefetchArea(kind geo.Kind, minX, minZ, maxX, maxZ int, worldScale float64) {}

type fixture struct {
	cfg      *config.Config
	registry *world.PaletteRegistry
	builder  *Builder
}

func newFixture(t *testing.T, src coastGeo, mutate func(*Options)) *fixture {
	t.Helper()
	cfg := config.Default()
	registry := world.NewPaletteRegistry()
	opts := Options{
		World:    cfg.World,
		LOD:      cfg.LOD,
		Water:    water.NewResolver(src, cfg.World, cfg.Water),
		Biomes:   biomes.NewSource(src, cfg.World),
		Synth:    terrain.NewSynthesizer(cfg.World, nil),
		Registry: registry,
		Logger:   log.New(io.Discard, "", 0),
	}
	if mutate != nil {
		mutate(&opts)
	}
	b, err := NewBuilder(opts)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return &fixture{cfg: cfg, registry: registry, builder: b}
}

func (f *fixture) build(t *testing.T, req Request, width int) (*world.MemorySink, TileStats) {
	t.Helper()
	sink := world.NewMemorySink(width)
	stats, err := f.builder.BuildTile(f.builder.NewWorkerContext(), req, sink)
	if err != nil {
		t.Fatalf("BuildTile(%v): %v", req, err)
	}
	if sink.Len() != width*width {
		t.Fatalf("expected %d columns, got %d", width*width, sink.Len())
	}
	return sink, stats
}

func (f *fixture) material(t *testing.T, ref world.BlockRef) world.Material {
	t.Helper()
	m, ok := f.registry.Material(ref)
	if !ok {
		t.Fatalf("unknown block ref %d", ref)
	}
	return m
}

func checkTiled(t *testing.T, points []world.Point, top int) {
	t.Helper()
	next := 0
	for i, p := range points {
		if p.Start != next || p.End <= p.Start {
			t.Fatalf("point %d [%d,%d) breaks tiling at %d", i, p.Start, p.End, next)
		}
		next = p.End
	}
	if next != top {
		t.Fatalf("column ends at %d, want %d", next, top)
	}
}

func TestStride(t *testing.T) {
	tests := []struct {
		detail, start, width, want int
	}{
		{4, detailedWaterStrideStart, 64, 1},
		{5, detailedWaterStrideStart, 64, 2},
		{6, detailedWaterStrideStart, 64, 4},
		{9, detailedWaterStrideStart, 64, 4},
		{6, detailedWaterStrideStart, 2, 2},
		{6, coverStrideStart, 64, 1},
		{7, coverStrideStart, 64, 2},
		{8, coverStrideStart, 64, 4},
	}
	for _, tt := range tests {
		if got := stride(tt.detail, tt.start, tt.width); got != tt.want {
			t.Fatalf("stride(%d,%d,%d) = %d, want %d", tt.detail, tt.start, tt.width, got, tt.want)
		}
	}
	if blendCells(12, 8) != 2 || blendCells(12, 1) != 12 || blendCells(0, 4) != 0 {
		t.Fatalf("unexpected blend cell counts")
	}
}

func TestBuildTileDryLand(t *testing.T) {
	f := newFixture(t, coastGeo{coastX: -100000}, nil)
	sink, stats := f.build(t, Request{ChunkX: 2, ChunkZ: -1}, 16)
	if stats.DetailedWater || stats.WaterColumns != 0 {
		t.Fatalf("dry tile used water: %+v", stats)
	}

	// 350 m at 35 m per block sits at y=73, local top 138.
	points, _ := sink.Column(5, 7)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %+v", points)
	}
	checkTiled(t, points, 384)
	if points[0].End != 137 || points[1].End != 138 {
		t.Fatalf("unexpected boundaries %+v", points)
	}
	want := []world.Material{world.MaterialDirt, world.MaterialGrass, world.MaterialAir}
	for i, p := range points {
		if got := f.material(t, p.Block); got != want[i] {
			t.Fatalf("point %d: got %s want %s", i, got, want[i])
		}
	}
	plains, _ := f.registry.Biome(world.BiomePlains)
	if points[0].Biome != plains {
		t.Fatalf("expected plains biome ref")
	}
}

func TestBuildTileOcean(t *testing.T) {
	f := newFixture(t, coastGeo{coastX: 100000}, nil)
	sink, stats := f.build(t, Request{}, 16)
	if !stats.DetailedWater || stats.WaterColumns != 16*16 {
		t.Fatalf("expected an all-water tile with detailed water: %+v", stats)
	}
	waterRef, _ := f.registry.BlockState(world.MaterialWater)
	sink.ForEach(func(x, z int, points []world.Point) bool {
		checkTiled(t, points, 384)
		last := points[len(points)-2]
		if last.Block != waterRef || last.End != 128 {
			t.Fatalf("column (%d,%d): expected water up to 128, got %+v", x, z, last)
		}
		return true
	})
}

func TestBuildTileTilesShoreline(t *testing.T) {
	f := newFixture(t, coastGeo{coastX: 40}, nil)
	for detail := uint8(0); detail <= 6; detail++ {
		sink, _ := f.build(t, Request{ChunkX: 1, Detail: detail}, 32)
		sink.ForEach(func(x, z int, points []world.Point) bool {
			checkTiled(t, points, 384)
			return true
		})
	}
}

func TestDetailedWaterMonotonic(t *testing.T) {
	f := newFixture(t, coastGeo{coastX: 100}, nil)
	const footprint = 256
	previous := -1
	for detail := uint8(2); detail <= 7; detail++ {
		width := footprint >> detail
		_, stats := f.build(t, Request{Detail: detail}, width)
		if previous >= 0 && stats.DetailedSamples > previous {
			t.Fatalf("detail %d sampled %d detailed cells, more than %d at the finer level", detail, stats.DetailedSamples, previous)
		}
		previous = stats.DetailedSamples
	}
	if previous != 0 {
		t.Fatalf("detailed water should be off past detail %d", detailedWaterMaxDetail)
	}
}

func TestDetailedWaterKeepsLandAtFastHeight(t *testing.T) {
	tests := []struct {
		name   string
		detail uint8
		coastX int
	}{
		{name: "per column", detail: 0, coastX: 8},
		{name: "per column coarse cells", detail: 2, coastX: 8},
		{name: "grouped", detail: 5, coastX: 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, coastGeo{coastX: tt.coastX}, nil)
			const width = 16
			req := Request{Detail: tt.detail}
			originX, originZ := req.Origin()
			s := newTileScratch(width)
			var stats TileStats
			f.builder.resolveWater(s, originX, originZ, req.CellSize(), int(tt.detail), &stats)
			if !stats.DetailedWater || stats.DetailedSamples == 0 {
				t.Fatalf("expected detailed water to run: %+v", stats)
			}
			land := 0
			for i, cover := range s.covers {
				if cover.MayHoldWater() {
					continue
				}
				land++
				if s.detailed[i] || s.cols[i] != s.fast[i] {
					t.Fatalf("land cell %d (%s): fast %+v, got %+v", i, cover, s.fast[i], s.cols[i])
				}
			}
			if land == 0 {
				t.Fatalf("fixture has no land cells")
			}
		})
	}
}

func TestWaterActivationChecksBorder(t *testing.T) {
	near := newFixture(t, coastGeo{coastX: -5}, nil)
	if _, stats := near.build(t, Request{}, 16); !stats.DetailedWater {
		t.Fatalf("water just outside the tile should activate detailed water")
	}
	far := newFixture(t, coastGeo{coastX: -50}, nil)
	if _, stats := far.build(t, Request{}, 16); stats.DetailedWater {
		t.Fatalf("distant water should not activate detailed water")
	}
}

type oddBiomes struct{}

func (oddBiomes) BiomeWithCover(x, z int, cover geo.CoverClass) world.BiomeID {
	return "moon_crater"
}

func TestUnknownBiomeFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, coastGeo{coastX: -100000}, func(o *Options) {
		o.Biomes = oddBiomes{}
		o.Logger = log.New(&buf, "", 0)
	})
	sink, _ := f.build(t, Request{}, 4)
	plains, _ := f.registry.Biome(world.BiomePlains)
	points, _ := sink.Column(0, 0)
	for _, p := range points {
		if p.Biome != plains {
			t.Fatalf("expected default biome ref, got %d", p.Biome)
		}
	}
	if got := strings.Count(buf.String(), "unknown biome"); got != 1 {
		t.Fatalf("expected one warning, got %d: %s", got, buf.String())
	}
}

func TestBuildTileRejectsBadRequests(t *testing.T) {
	f := newFixture(t, coastGeo{}, nil)
	wc := f.builder.NewWorkerContext()
	if _, err := f.builder.BuildTile(wc, Request{Detail: 30}, world.NewMemorySink(4)); err == nil {
		t.Fatalf("expected detail above max to fail")
	}
	if _, err := f.builder.BuildTile(wc, Request{}, world.NewMemorySink(0)); err == nil {
		t.Fatalf("expected empty sink to fail")
	}
	if _, err := NewBuilder(Options{}); err == nil {
		t.Fatalf("expected missing collaborators to fail")
	}
}

func TestGenerate(t *testing.T) {
	f := newFixture(t, coastGeo{coastX: 20}, nil)
	gen := NewGenerator(f.builder)

	sink := world.NewMemorySink(8)
	if err := <-gen.Generate(context.Background(), Request{}, sink, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sink.Len() != 64 {
		t.Fatalf("expected 64 columns, got %d", sink.Len())
	}

	inline := ExecutorFunc(func(task func()) { task() })
	if err := <-gen.Generate(context.Background(), Request{Detail: 30}, world.NewMemorySink(8), inline); err == nil {
		t.Fatalf("expected build error to be delivered")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := <-gen.Generate(ctx, Request{}, world.NewMemorySink(8), inline); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateWarmsCachesFirst(t *testing.T) {
	tiles := &countingTiles{chunks: map[[2]int]int{}}
	waterFake := &countingWater{}
	cfg := config.Default()
	warmer := prefetch.NewWarmer(inlinePool{}, tiles, waterFake, cfg.Prefetch, cfg.World.WorldScale)
	f := newFixture(t, coastGeo{coastX: 20}, func(o *Options) { o.Warmer = warmer })
	gen := NewGenerator(f.builder)

	inline := ExecutorFunc(func(task func()) { task() })
	if err := <-gen.Generate(context.Background(), Request{}, world.NewMemorySink(32), inline); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// 32 blocks span chunks 0..1 on each axis.
	if len(tiles.chunks) != 4 || waterFake.chunks != 4 || waterFake.regions != 1 {
		t.Fatalf("unexpected prefetch: %d chunks, %d water chunks, %d regions", len(tiles.chunks), waterFake.chunks, waterFake.regions)
	}
}

func TestGenerateAll(t *testing.T) {
	f := newFixture(t, coastGeo{coastX: 20}, nil)
	gen := NewGenerator(f.builder)

	var reqs []Request
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			reqs = append(reqs, Request{ChunkX: x * 4, ChunkZ: z * 4, Detail: 2})
		}
	}
	sinks := make(map[Request]*world.MemorySink, len(reqs))
	for _, r := range reqs {
		sinks[r] = world.NewMemorySink(16)
	}
	stats, err := gen.GenerateAll(context.Background(), reqs, func(r Request) world.Sink { return sinks[r] }, 3)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	for i, s := range stats {
		if s.Request != reqs[i] || s.Width != 16 {
			t.Fatalf("stats %d: %+v", i, s)
		}
		if sinks[reqs[i]].Len() != 256 {
			t.Fatalf("tile %v incomplete", reqs[i])
		}
	}

	reqs = append(reqs, Request{Detail: 30})
	sinks[Request{Detail: 30}] = world.NewMemorySink(16)
	if _, err := gen.GenerateAll(context.Background(), reqs, func(r Request) world.Sink { return sinks[r] }, 2); err == nil || !strings.Contains(err.Error(), "build tile") {
		t.Fatalf("expected wrapped build error, got %v", err)
	}
}

type inlinePool struct{}

func (inlinePool) Submit(task prefetch.Task) bool {
	task()
	return true
}

type countingTiles struct{ chunks map[[2]int]int }

func (c *countingTiles) PrefetchTiles(kind geo.Kind, centerX, centerZ int, worldScale float64, radius int) {
	c.chunks[[2]int{centerX, centerZ}]++
}

type countingWater struct{ regions, chunks int }

func (c *countingWater) PrefetchRegion(minX, minZ, maxX, maxZ int) { c.regions++ }
func (c *countingWater) PrefetchForChunk(chunkX, chunkZ, radius int) {
	c.chunks++
}

func TestPrefetchPlansCoarseGrid(t *testing.T) {
	tiles := &countingTiles{chunks: map[[2]int]int{}}
	waterFake := &countingWater{}
	cfg := config.Default()
	warmer := prefetch.NewWarmer(inlinePool{}, tiles, waterFake, cfg.Prefetch, cfg.World.WorldScale)
	f := newFixture(t, coastGeo{coastX: 20}, func(o *Options) { o.Warmer = warmer })

	// 64 blocks at detail 0 span chunks 0..3 on each axis.
	accepted := f.builder.Prefetch(Request{}, 64)
	if len(tiles.chunks) != 16 || waterFake.chunks != 16 || waterFake.regions != 1 {
		t.Fatalf("unexpected prefetch plan: %d chunks, %d water chunks, %d regions", len(tiles.chunks), waterFake.chunks, waterFake.regions)
	}
	if accepted != 16*3+1 {
		t.Fatalf("expected %d accepted tasks, got %d", 16*3+1, accepted)
	}

	waterFake.regions = 0
	f.builder.Prefetch(Request{Detail: 6}, 4)
	if waterFake.regions != 0 {
		t.Fatalf("coarse tiles should not prefetch detailed water")
	}

	inland := newFixture(t, coastGeo{coastX: -100000}, func(o *Options) { o.Warmer = warmer })
	inland.builder.Prefetch(Request{}, 64)
	if waterFake.regions != 0 {
		t.Fatalf("dry tiles should not prefetch a water region")
	}
}
