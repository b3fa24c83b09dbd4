package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"earthlod/internal/biomes"
	"earthlod/internal/config"
	"earthlod/internal/geo"
	"earthlod/internal/lod"
	"earthlod/internal/prefetch"
	"earthlod/internal/terrain"
	"earthlod/internal/water"
	"earthlod/internal/weather"
	"earthlod/internal/world"
)

const weatherTick = 250 * time.Millisecond

// pipeline wires the raster layer, resolvers and LOD builder together.
type pipeline struct {
	cfg       *config.Config
	logger    *log.Logger
	layer     *geo.Layer
	scheduler *prefetch.Scheduler
	builder   *lod.Builder
	generator *lod.Generator
	registry  *world.PaletteRegistry
	weather   *weather.Simulator
}

func newLoader(cfg config.GeoConfig) (geo.TileLoader, error) {
	switch cfg.Source {
	case "", "synthetic":
		return geo.NewSyntheticLoader(geo.SyntheticOptions{
			TileSize:    cfg.TileSize,
			Seed:        cfg.Seed,
			Frequency:   cfg.Frequency,
			Amplitude:   cfg.Amplitude,
			Octaves:     cfg.Octaves,
			Persistence: cfg.Persistence,
			Lacunarity:  cfg.Lacunarity,
		}), nil
	case "dir":
		if cfg.TileDir == "" {
			return nil, errors.New("geo.tileDir is required for the dir source")
		}
		return geo.NewDirLoader(cfg.TileDir, cfg.TileSize), nil
	default:
		return nil, fmt.Errorf("unknown geo source %q", cfg.Source)
	}
}

func newPipeline(cfg *config.Config, logger *log.Logger) (*pipeline, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "earthlod ", log.LstdFlags|log.Lmicroseconds)
	}
	loader, err := newLoader(cfg.Geo)
	if err != nil {
		return nil, err
	}
	layer := geo.NewLayer(loader, geo.LayerOptions{
		TileSize:  cfg.Geo.TileSize,
		CacheSize: cfg.Geo.CacheSize,
		Logger:    log.New(logger.Writer(), "geo ", logger.Flags()),
	})
	resolver := water.NewResolver(layer, cfg.World, cfg.Water)

	scheduler := prefetch.NewScheduler(cfg.Prefetch, log.New(logger.Writer(), "prefetch ", logger.Flags()))
	warmer := prefetch.NewWarmer(scheduler, layer, resolver, cfg.Prefetch, cfg.World.WorldScale)

	registry := world.NewPaletteRegistry()
	sim := weather.NewSimulator(cfg.Weather)
	builder, err := lod.NewBuilder(lod.Options{
		World:    cfg.World,
		LOD:      cfg.LOD,
		Water:    resolver,
		Biomes:   biomes.NewSource(layer, cfg.World),
		Synth:    terrain.NewSynthesizer(cfg.World, nil),
		Registry: registry,
		Weather:  sim,
		Warmer:   warmer,
		Logger:   log.New(logger.Writer(), "lod ", logger.Flags()),
	})
	if err != nil {
		scheduler.Close()
		return nil, fmt.Errorf("create lod builder: %w", err)
	}
	return &pipeline{
		cfg:       cfg,
		logger:    logger,
		layer:     layer,
		scheduler: scheduler,
		builder:   builder,
		generator: lod.NewGenerator(builder),
		registry:  registry,
		weather:   sim,
	}, nil
}

// tileRequests lays out a square of tiles around the origin chunk. Tiles at
// a detail level are aligned on their own footprint.
func tileRequests(originX, originZ, radius, width int, detail uint8) []lod.Request {
	span := max(1, (width<<detail)/16)
	baseX := floorDiv(originX, span) * span
	baseZ := floorDiv(originZ, span) * span
	reqs := make([]lod.Request, 0, (2*radius+1)*(2*radius+1))
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			reqs = append(reqs, lod.Request{
				ChunkX: baseX + dx*span,
				ChunkZ: baseZ + dz*span,
				Detail: detail,
			})
		}
	}
	return reqs
}

// tileSinks hands out one sink per request from a provider and remembers
// it so callers can read the finished columns back after the run.
type tileSinks struct {
	mu       sync.Mutex
	width    int
	provider world.SinkProvider
	tiles    map[lod.Request]world.Sink
}

// newTileSinks uses world.MemoryProvider when provider is nil.
func newTileSinks(width int, provider world.SinkProvider) *tileSinks {
	if provider == nil {
		provider = world.MemoryProvider
	}
	return &tileSinks{width: width, provider: provider, tiles: make(map[lod.Request]world.Sink)}
}

func (s *tileSinks) sinkFor(req lod.Request) world.Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	sink := s.provider.NewSink(s.width)
	s.tiles[req] = sink
	return sink
}

func (s *tileSinks) tile(req lod.Request) (world.Sink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sink, ok := s.tiles[req]
	return sink, ok
}

// run builds every request. Realtime weather keeps stepping while tiles are
// generated so later tiles see the current precipitation.
func (p *pipeline) run(ctx context.Context, reqs []lod.Request, sinks *tileSinks) ([]lod.TileStats, error) {
	if p.cfg.Weather.Realtime {
		wctx, stop := context.WithCancel(ctx)
		defer stop()
		go p.weather.Run(wctx, weatherTick)
	}
	return p.generator.GenerateAll(ctx, reqs, sinks.sinkFor, p.cfg.LOD.Workers)
}

func (p *pipeline) Close() {
	p.scheduler.Close()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
