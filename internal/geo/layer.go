package geo

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Layer samples elevation, land cover and climate from cached raster tiles.
// Fetch failures never surface to callers: the affected tile samples as
// no-data cover, 0 m elevation and unknown climate.
type Layer struct {
	loader   TileLoader
	tileSize int
	cache    *tileCache
	group    singleflight.Group
	logger   *log.Logger
	warned   sync.Map // tileKey -> struct{}
}

// LayerOptions tunes a Layer. Zero values select defaults.
type LayerOptions struct {
	TileSize  int
	CacheSize int
	Logger    *log.Logger
}

func NewLayer(loader TileLoader, opts LayerOptions) *Layer {
	if opts.TileSize <= 0 {
		opts.TileSize = 256
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 512
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "geo ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Layer{
		loader:   loader,
		tileSize: opts.TileSize,
		cache:    newTileCache(opts.CacheSize),
		logger:   logger,
	}
}

// TileSize returns the pixel width of one tile.
func (l *Layer) TileSize() int {
	return l.tileSize
}

// CachedTiles reports how many tiles are resident.
func (l *Layer) CachedTiles() int {
	return l.cache.len()
}

// tile returns the cached tile, loading it at most once across concurrent
// callers.
func (l *Layer) tile(ctx context.Context, kind Kind, tx, tz int) *Tile {
	key := tileKey{kind: kind, x: tx, z: tz}
	if t, ok := l.cache.get(key); ok {
		return t
	}
	v, _, _ := l.group.Do(key.String(), func() (any, error) {
		if t, ok := l.cache.get(key); ok {
			return t, nil
		}
		t, err := l.loader.LoadTile(ctx, kind, tx, tz)
		if err == nil && t != nil {
			err = t.Validate()
			if err == nil && t.Size != l.tileSize {
				err = fmt.Errorf("tile size %d does not match layer tile size %d", t.Size, l.tileSize)
			}
		}
		if err != nil || t == nil {
			l.warnOnce(key, err)
			t = &Tile{Kind: kind, X: tx, Z: tz, Size: l.tileSize, Missing: true}
		}
		return l.cache.putIfAbsent(key, t), nil
	})
	return v.(*Tile)
}

func (l *Layer) warnOnce(key tileKey, err error) {
	if _, loaded := l.warned.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	if err == nil {
		l.logger.Printf("tile %s unavailable, using defaults", key)
		return
	}
	l.logger.Printf("tile %s unavailable, using defaults: %v", key, err)
}

func (l *Layer) pixel(kind Kind, px, pz int) (float32, bool) {
	size := l.tileSize
	tx, tz := floorDiv(px, size), floorDiv(pz, size)
	t := l.tile(context.Background(), kind, tx, tz)
	if t.Missing {
		return 0, false
	}
	return t.At(px-tx*size, pz-tz*size), true
}

// pixelCoord maps a block coordinate's center to continuous pixel space.
func pixelCoord(block int, worldScale float64, kind Kind) float64 {
	return (float64(block) + 0.5) * worldScale / kind.Resolution()
}

// SampleElevation returns meters above sea level, bilinearly interpolated.
func (l *Layer) SampleElevation(x, z int, worldScale float64) float64 {
	fx := pixelCoord(x, worldScale, KindElevation) - 0.5
	fz := pixelCoord(z, worldScale, KindElevation) - 0.5
	x0 := int(math.Floor(fx))
	z0 := int(math.Floor(fz))
	tx := fx - float64(x0)
	tz := fz - float64(z0)

	v00, _ := l.pixel(KindElevation, x0, z0)
	v10, _ := l.pixel(KindElevation, x0+1, z0)
	v01, _ := l.pixel(KindElevation, x0, z0+1)
	v11, _ := l.pixel(KindElevation, x0+1, z0+1)

	top := float64(v00) + (float64(v10)-float64(v00))*tx
	bottom := float64(v01) + (float64(v11)-float64(v01))*tx
	return top + (bottom-top)*tz
}

// SampleCoverClass returns the nearest land-cover pixel.
func (l *Layer) SampleCoverClass(x, z int, worldScale float64) CoverClass {
	px := int(math.Floor(pixelCoord(x, worldScale, KindCover)))
	pz := int(math.Floor(pixelCoord(z, worldScale, KindCover)))
	v, ok := l.pixel(KindCover, px, pz)
	if !ok {
		return CoverNoData
	}
	return CoverClass(v)
}

// SampleClimateClass returns the nearest climate pixel.
func (l *Layer) SampleClimateClass(x, z int, worldScale float64) ClimateClass {
	px := int(math.Floor(pixelCoord(x, worldScale, KindClimate)))
	pz := int(math.Floor(pixelCoord(z, worldScale, KindClimate)))
	v, ok := l.pixel(KindClimate, px, pz)
	if !ok {
		return ClimateUnknown
	}
	return ClimateClass(v)
}

// PrefetchTiles loads the (2*radius+1)^2 tiles around the block coordinate.
// Already cached tiles are skipped.
func (l *Layer) PrefetchTiles(kind Kind, centerX, centerZ int, worldScale float64, radius int) {
	if radius < 0 {
		radius = 0
	}
	px := int(math.Floor(pixelCoord(centerX, worldScale, kind)))
	pz := int(math.Floor(pixelCoord(centerZ, worldScale, kind)))
	ctx := context.Background()
	tx, tz := floorDiv(px, l.tileSize), floorDiv(pz, l.tileSize)
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			l.tile(ctx, kind, tx+dx, tz+dz)
		}
	}
}

// PrefetchArea loads every tile of kind touched by the block rectangle.
func (l *Layer) PrefetchArea(kind Kind, minX, minZ, maxX, maxZ int, worldScale float64) {
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxZ < minZ {
		minZ, maxZ = maxZ, minZ
	}
	ctx := context.Background()
	tx0 := floorDiv(int(math.Floor(pixelCoord(minX, worldScale, kind))), l.tileSize)
	tz0 := floorDiv(int(math.Floor(pixelCoord(minZ, worldScale, kind))), l.tileSize)
	tx1 := floorDiv(int(math.Floor(pixelCoord(maxX, worldScale, kind))), l.tileSize)
	tz1 := floorDiv(int(math.Floor(pixelCoord(maxZ, worldScale, kind))), l.tileSize)
	for tz := tz0; tz <= tz1; tz++ {
		for tx := tx0; tx <= tx1; tx++ {
			l.tile(ctx, kind, tx, tz)
		}
	}
}
