package geo

import (
	"context"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// SyntheticOptions shapes the procedural stand-in for real datasets.
type SyntheticOptions struct {
	TileSize    int
	Seed        int64
	Frequency   float64 // cycles per meter for the base octave
	Amplitude   float64 // peak elevation in meters
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// SyntheticLoader fabricates coherent elevation, land-cover and climate
// rasters from seeded noise. All three kinds are derived from the same
// meter-space fields so they agree wherever tiles overlap.
type SyntheticLoader struct {
	opts        SyntheticOptions
	elevation   opensimplex.Noise
	lakes       opensimplex.Noise
	temperature *perlin.Perlin
	humidity    *perlin.Perlin
	forest      *perlin.Perlin
}

const (
	lakeThreshold      = 0.55
	climateFrequency   = 1.0 / 400000
	forestFrequency    = 1.0 / 6000
	lapseRatePerMeter  = 0.0065
	noDataOceanDepth   = -250.0
	mangroveMaxElevM   = 4.0
	perlinAlpha        = 2.0
	perlinBeta         = 2.0
	perlinOctaves      = 3
	forestBaseFraction = 0.35
)

func NewSyntheticLoader(opts SyntheticOptions) *SyntheticLoader {
	if opts.TileSize <= 0 {
		opts.TileSize = 256
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 0.0004
	}
	if opts.Amplitude <= 0 {
		opts.Amplitude = 900
	}
	if opts.Octaves <= 0 {
		opts.Octaves = 4
	}
	if opts.Persistence <= 0 {
		opts.Persistence = 0.45
	}
	if opts.Lacunarity <= 0 {
		opts.Lacunarity = 2
	}
	return &SyntheticLoader{
		opts:        opts,
		elevation:   opensimplex.New(opts.Seed),
		lakes:       opensimplex.New(opts.Seed ^ 0x5DEECE66D),
		temperature: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, opts.Seed+1),
		humidity:    perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, opts.Seed+2),
		forest:      perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, opts.Seed+3),
	}
}

func (s *SyntheticLoader) LoadTile(ctx context.Context, kind Kind, tx, tz int) (*Tile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := s.opts.TileSize
	res := kind.Resolution()
	tile := &Tile{Kind: kind, X: tx, Z: tz, Size: size, Data: make([]float32, size*size)}
	for pz := 0; pz < size; pz++ {
		mz := (float64(tz*size+pz) + 0.5) * res
		for px := 0; px < size; px++ {
			mx := (float64(tx*size+px) + 0.5) * res
			var v float64
			switch kind {
			case KindElevation:
				v = s.ElevationAt(mx, mz)
			case KindCover:
				v = float64(s.CoverAt(mx, mz))
			case KindClimate:
				v = float64(s.ClimateAt(mx, mz))
			}
			tile.Data[pz*size+px] = float32(v)
		}
	}
	return tile, nil
}

// ElevationAt returns meters above sea level at a meter-space position.
func (s *SyntheticLoader) ElevationAt(mx, mz float64) float64 {
	frequency := s.opts.Frequency
	amplitude := 1.0
	sum := 0.0
	norm := 0.0
	for i := 0; i < s.opts.Octaves; i++ {
		sum += s.elevation.Eval2(mx*frequency, mz*frequency) * amplitude
		norm += amplitude
		amplitude *= s.opts.Persistence
		frequency *= s.opts.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm * s.opts.Amplitude
}

func (s *SyntheticLoader) isLake(mx, mz, elevation float64) bool {
	if elevation <= 0 {
		return false
	}
	f := s.opts.Frequency * 6
	return s.lakes.Eval2(mx*f, mz*f) > lakeThreshold
}

func (s *SyntheticLoader) climate(mx, mz, elevation float64) (tempC, humidity float64) {
	tempC = 14 + 30*s.temperature.Noise2D(mx*climateFrequency, mz*climateFrequency)
	if elevation > 0 {
		tempC -= elevation * lapseRatePerMeter
	}
	humidity = 0.5 + 0.8*s.humidity.Noise2D(mx*climateFrequency*1.7, mz*climateFrequency*1.7)
	return tempC, math.Max(0, math.Min(1, humidity))
}

// ClimateAt classifies the climate at a meter-space position.
func (s *SyntheticLoader) ClimateAt(mx, mz float64) ClimateClass {
	tempC, humidity := s.climate(mx, mz, s.ElevationAt(mx, mz))
	return Classify(tempC, humidity)
}

// CoverAt returns the land-cover class at a meter-space position.
func (s *SyntheticLoader) CoverAt(mx, mz float64) CoverClass {
	elevation := s.ElevationAt(mx, mz)
	tempC, humidity := s.climate(mx, mz, elevation)
	class := Classify(tempC, humidity)

	if elevation <= 0 {
		if elevation < noDataOceanDepth {
			return CoverNoData
		}
		return CoverWater
	}
	if s.isLake(mx, mz, elevation) {
		return CoverWater
	}
	if class.Tropical() && elevation <= mangroveMaxElevM && humidity >= 0.55 {
		return CoverMangrove
	}
	switch {
	case class == ClimateEF:
		return CoverSnowIce
	case class == ClimateET:
		return CoverMossLichen
	case class.Desert():
		return CoverBare
	case class.Arid():
		return CoverShrubland
	}
	forest := s.forest.Noise2D(mx*forestFrequency, mz*forestFrequency)
	if forest+humidity*0.5 > forestBaseFraction {
		return CoverTree
	}
	if class.Temperate() && forest < -0.2 {
		return CoverCropland
	}
	return CoverGrassland
}
