package lod

import (
	"log"

	"earthlod/internal/world"
)

// wrapperPair remembers the last column's top and filler representations;
// neighbouring columns usually share both.
type wrapperPair struct {
	top, filler       world.Material
	topRef, fillerRef world.BlockRef
	valid             bool
}

// WorkerContext holds the per-worker representation caches and scratch
// buffers. It must be used by one goroutine at a time.
type WorkerContext struct {
	registry     world.Registry
	defaultBiome world.BiomeID
	logger       *log.Logger

	blocks map[world.Material]world.BlockRef
	biomes map[world.BiomeID]world.BiomeRef
	pair   wrapperPair
	warned map[string]struct{}

	layers []world.Layer
	points []world.Point
}

func NewWorkerContext(registry world.Registry, defaultBiome world.BiomeID, logger *log.Logger) *WorkerContext {
	if logger == nil {
		logger = log.New(log.Writer(), "lod ", log.LstdFlags|log.Lmicroseconds)
	}
	return &WorkerContext{
		registry:     registry,
		defaultBiome: defaultBiome,
		logger:       logger,
		blocks:       make(map[world.Material]world.BlockRef, 32),
		biomes:       make(map[world.BiomeID]world.BiomeRef, 16),
		warned:       make(map[string]struct{}),
		layers:       make([]world.Layer, 0, 16),
		points:       make([]world.Point, 0, 16),
	}
}

func (wc *WorkerContext) warnOnce(key, format string, args ...any) {
	if _, ok := wc.warned[key]; ok {
		return
	}
	wc.warned[key] = struct{}{}
	wc.logger.Printf(format, args...)
}

// canonicalBiome maps biomes missing from the biome table to the default.
func (wc *WorkerContext) canonicalBiome(id world.BiomeID) world.BiomeID {
	if _, ok := world.LookupBiome(id); ok {
		return id
	}
	wc.warnOnce("biome:"+string(id), "unknown biome %q, using %q", id, wc.defaultBiome)
	return wc.defaultBiome
}

func (wc *WorkerContext) block(material world.Material) world.BlockRef {
	if wc.pair.valid {
		if material == wc.pair.top {
			return wc.pair.topRef
		}
		if material == wc.pair.filler {
			return wc.pair.fillerRef
		}
	}
	if ref, ok := wc.blocks[material]; ok {
		return ref
	}
	ref, err := wc.registry.BlockState(material)
	if err != nil {
		wc.warnOnce("block:"+string(material), "block %q unavailable, using air: %v", material, err)
		ref = wc.registry.Air()
	}
	wc.blocks[material] = ref
	return ref
}

func (wc *WorkerContext) biome(id world.BiomeID) world.BiomeRef {
	if ref, ok := wc.biomes[id]; ok {
		return ref
	}
	ref, err := wc.registry.Biome(id)
	if err != nil {
		wc.warnOnce("biomeref:"+string(id), "biome %q has no representation, using %q: %v", id, wc.defaultBiome, err)
		ref, err = wc.registry.Biome(wc.defaultBiome)
		if err != nil {
			ref = 0
		}
	}
	wc.biomes[id] = ref
	return ref
}

// convert resolves a synthesized column into sink points. The first two
// layers, usually filler and top, seed the pair for the next column.
func (wc *WorkerContext) convert(layers []world.Layer) []world.Point {
	points := wc.points[:0]
	for _, l := range layers {
		points = append(points, world.Point{
			Start: l.Start,
			End:   l.End,
			Light: l.Light,
			Block: wc.block(l.Material),
			Biome: wc.biome(l.Biome),
		})
	}
	if len(layers) >= 2 {
		wc.pair = wrapperPair{
			filler:    layers[0].Material,
			fillerRef: points[0].Block,
			top:       layers[1].Material,
			topRef:    points[1].Block,
			valid:     true,
		}
	}
	wc.points = points
	return points
}
