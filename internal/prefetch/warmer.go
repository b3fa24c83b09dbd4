package prefetch

import (
	"earthlod/internal/config"
	"earthlod/internal/geo"
)

// Submitter accepts best-effort tasks.
type Submitter interface {
	Submit(Task) bool
}

// TilePrefetcher warms raster tiles around a block coordinate.
type TilePrefetcher interface {
	PrefetchTiles(kind geo.Kind, centerX, centerZ int, worldScale float64, radius int)
}

// WaterPrefetcher warms the tiles the water resolver reads.
type WaterPrefetcher interface {
	PrefetchRegion(minX, minZ, maxX, maxZ int)
	PrefetchForChunk(chunkX, chunkZ, radius int)
}

// Warmer fans chunk and region prefetches out to a Submitter. A disabled
// Warmer does nothing.
type Warmer struct {
	pool       Submitter
	tiles      TilePrefetcher
	water      WaterPrefetcher
	cfg        config.PrefetchConfig
	worldScale float64
}

func NewWarmer(pool Submitter, tiles TilePrefetcher, water WaterPrefetcher, cfg config.PrefetchConfig, worldScale float64) *Warmer {
	return &Warmer{pool: pool, tiles: tiles, water: water, cfg: cfg, worldScale: worldScale}
}

func (w *Warmer) Enabled() bool {
	return w != nil && w.cfg.Enabled && w.pool != nil
}

func (w *Warmer) waterEnabled() bool {
	return w.Enabled() && w.cfg.WaterEnabled && w.water != nil
}

// ForChunk queues cover, climate, elevation and water prefetches around the
// center of a chunk. It returns the number of tasks accepted.
func (w *Warmer) ForChunk(chunkX, chunkZ int) int {
	if !w.Enabled() {
		return 0
	}
	cx, cz := chunkX*16+8, chunkZ*16+8
	accepted := 0
	if w.tiles != nil {
		coverRadius := w.cfg.LandCoverRadius
		elevationRadius := w.cfg.ElevationRadius
		if w.pool.Submit(func() {
			w.tiles.PrefetchTiles(geo.KindCover, cx, cz, w.worldScale, coverRadius)
			w.tiles.PrefetchTiles(geo.KindClimate, cx, cz, w.worldScale, coverRadius)
		}) {
			accepted++
		}
		if w.pool.Submit(func() {
			w.tiles.PrefetchTiles(geo.KindElevation, cx, cz, w.worldScale, elevationRadius)
		}) {
			accepted++
		}
	}
	if w.waterEnabled() {
		radius := w.cfg.WaterRadius
		if w.pool.Submit(func() { w.water.PrefetchForChunk(chunkX, chunkZ, radius) }) {
			accepted++
		}
	}
	return accepted
}

// WaterRegion queues a bordered water prefetch for a block rectangle.
func (w *Warmer) WaterRegion(minX, minZ, maxX, maxZ int) bool {
	if !w.waterEnabled() {
		return false
	}
	return w.pool.Submit(func() { w.water.PrefetchRegion(minX, minZ, maxX, maxZ) })
}
