package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a JSON-friendly wrapper around time.Duration that accepts human
// readable strings such as "30s" in configuration files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML mirrors MarshalJSON so YAML payloads stay human readable.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: decode int: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration: decode string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures the tunable parameters of the LOD generation engine.
type Config struct {
	World    WorldConfig    `json:"world" yaml:"world"`
	LOD      LODConfig      `json:"lod" yaml:"lod"`
	Water    WaterConfig    `json:"water" yaml:"water"`
	Geo      GeoConfig      `json:"geo" yaml:"geo"`
	Prefetch PrefetchConfig `json:"prefetch" yaml:"prefetch"`
	Weather  WeatherConfig  `json:"weather" yaml:"weather"`
}

type WorldConfig struct {
	MinY                   int     `json:"minY" yaml:"minY"`
	Height                 int     `json:"height" yaml:"height"`
	WorldScale             float64 `json:"worldScale" yaml:"worldScale"` // meters per block
	TerrestrialHeightScale float64 `json:"terrestrialHeightScale" yaml:"terrestrialHeightScale"`
	OceanicHeightScale     float64 `json:"oceanicHeightScale" yaml:"oceanicHeightScale"`
	HeightOffset           int     `json:"heightOffset" yaml:"heightOffset"`
	SeaLevel               int     `json:"seaLevel" yaml:"seaLevel"`
	CinematicMode          bool    `json:"cinematicMode" yaml:"cinematicMode"`
	DefaultBiome           string  `json:"defaultBiome" yaml:"defaultBiome"`
}

type LODConfig struct {
	TileWidth     int `json:"tileWidth" yaml:"tileWidth"` // data columns per tile side
	MaxDetail     int `json:"maxDetail" yaml:"maxDetail"`
	Workers       int `json:"workers" yaml:"workers"`
	GridRadius    int `json:"gridRadius" yaml:"gridRadius"` // CLI: tiles around the origin
	DefaultDetail int `json:"defaultDetail" yaml:"defaultDetail"`
}

type WaterConfig struct {
	DetailedResolver     bool    `json:"detailedResolver" yaml:"detailedResolver"`
	RiverLakeShoreBlend  int     `json:"riverLakeShoreBlend" yaml:"riverLakeShoreBlend"`
	OceanShoreBlend      int     `json:"oceanShoreBlend" yaml:"oceanShoreBlend"`
	LakeDepth            int     `json:"lakeDepth" yaml:"lakeDepth"`
	ShelfSlope           float64 `json:"shelfSlope" yaml:"shelfSlope"` // blocks of depth per block from shore
	CinematicMaxSeaDepth int     `json:"cinematicMaxSeaDepth" yaml:"cinematicMaxSeaDepth"`
}

// GeoConfig selects and tunes the raster tile source.
type GeoConfig struct {
	Source    string  `json:"source" yaml:"source"` // "synthetic" or "dir"
	TileDir   string  `json:"tileDir" yaml:"tileDir"`
	TileSize  int     `json:"tileSize" yaml:"tileSize"`
	CacheSize int     `json:"cacheSize" yaml:"cacheSize"` // tiles kept per raster kind
	Seed      int64   `json:"seed" yaml:"seed"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"` // meters
	Octaves   int     `json:"octaves" yaml:"octaves"`
	// Persistence and Lacunarity shape the fractal sum of the synthetic loader.
	Persistence float64 `json:"persistence" yaml:"persistence"`
	Lacunarity  float64 `json:"lacunarity" yaml:"lacunarity"`
}

type PrefetchConfig struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	LandCoverRadius int      `json:"landCoverRadius" yaml:"landCoverRadius"`
	ElevationRadius int      `json:"elevationRadius" yaml:"elevationRadius"`
	WaterEnabled    bool     `json:"waterEnabled" yaml:"waterEnabled"`
	WaterRadius     int      `json:"waterRadius" yaml:"waterRadius"`
	MinThreads      int      `json:"minThreads" yaml:"minThreads"` // 0 derives from GOMAXPROCS
	MaxThreads      int      `json:"maxThreads" yaml:"maxThreads"`
	QueueSize       int      `json:"queueSize" yaml:"queueSize"`
	KeepAlive       Duration `json:"keepAlive" yaml:"keepAlive"`
}

type WeatherConfig struct {
	Realtime           bool     `json:"realtime" yaml:"realtime"`
	HistoricalSnow     bool     `json:"historicalSnow" yaml:"historicalSnow"`
	SnowSpacing        int      `json:"snowSpacing" yaml:"snowSpacing"`
	WeatherMinDuration Duration `json:"weatherMinDuration" yaml:"weatherMinDuration"`
	WeatherMaxDuration Duration `json:"weatherMaxDuration" yaml:"weatherMaxDuration"`
	SnowChance         float64  `json:"snowChance" yaml:"snowChance"`
	RainChance         float64  `json:"rainChance" yaml:"rainChance"`
	ThunderChance      float64  `json:"thunderChance" yaml:"thunderChance"`
	Seed               int64    `json:"seed" yaml:"seed"`
}

// Load reads configuration from a JSON or YAML file if provided. An empty path
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		World: WorldConfig{
			MinY:                   -64,
			Height:                 384,
			WorldScale:             35,
			TerrestrialHeightScale: 1,
			OceanicHeightScale:     1,
			HeightOffset:           63,
			SeaLevel:               63,
			CinematicMode:          false,
			DefaultBiome:           "plains",
		},
		LOD: LODConfig{
			TileWidth:     64,
			MaxDetail:     24,
			Workers:       0,
			GridRadius:    1,
			DefaultDetail: 2,
		},
		Water: WaterConfig{
			DetailedResolver:     true,
			RiverLakeShoreBlend:  6,
			OceanShoreBlend:      12,
			LakeDepth:            3,
			ShelfSlope:           0.5,
			CinematicMaxSeaDepth: 16,
		},
		Geo: GeoConfig{
			Source:      "synthetic",
			TileSize:    256,
			CacheSize:   512,
			Seed:        1337,
			Frequency:   0.0004,
			Amplitude:   900,
			Octaves:     4,
			Persistence: 0.45,
			Lacunarity:  2.0,
		},
		Prefetch: PrefetchConfig{
			Enabled:         true,
			LandCoverRadius: 1,
			ElevationRadius: 1,
			WaterEnabled:    true,
			WaterRadius:     1,
			QueueSize:       256,
			KeepAlive:       Duration(30 * time.Second),
		},
		Weather: WeatherConfig{
			Realtime:           false,
			HistoricalSnow:     false,
			SnowSpacing:        64,
			WeatherMinDuration: Duration(2 * time.Minute),
			WeatherMaxDuration: Duration(5 * time.Minute),
			SnowChance:         0.1,
			RainChance:         0.3,
			ThunderChance:      0.05,
			Seed:               1337,
		},
	}
}

func (c *Config) Validate() error {
	if c.World.Height <= 0 {
		return errors.New("world.height must be positive")
	}
	if c.World.WorldScale <= 0 {
		return errors.New("world.worldScale must be positive")
	}
	if c.World.SeaLevel < c.World.MinY || c.World.SeaLevel >= c.World.MinY+c.World.Height {
		return errors.New("world.seaLevel must lie within the world height")
	}
	if c.LOD.TileWidth <= 0 {
		return errors.New("lod.tileWidth must be positive")
	}
	if c.LOD.MaxDetail < 0 || c.LOD.MaxDetail > 24 {
		return errors.New("lod.maxDetail must be within [0, 24]")
	}
	if c.LOD.Workers < 0 {
		return errors.New("lod.workers cannot be negative")
	}
	if c.Water.RiverLakeShoreBlend < 0 || c.Water.OceanShoreBlend < 0 {
		return errors.New("water shoreline blends cannot be negative")
	}
	if c.Water.LakeDepth < 1 {
		return errors.New("water.lakeDepth must be at least 1")
	}
	if c.Geo.Source != "synthetic" && c.Geo.Source != "dir" {
		return fmt.Errorf("geo.source %q is not supported", c.Geo.Source)
	}
	if c.Geo.Source == "dir" && c.Geo.TileDir == "" {
		return errors.New("geo.tileDir must be set for the dir source")
	}
	if c.Geo.TileSize <= 0 {
		return errors.New("geo.tileSize must be positive")
	}
	if c.Prefetch.MinThreads < 0 || c.Prefetch.MaxThreads < 0 {
		return errors.New("prefetch thread counts cannot be negative")
	}
	if c.Prefetch.MaxThreads > 0 && c.Prefetch.MinThreads > c.Prefetch.MaxThreads {
		return errors.New("prefetch.minThreads must be <= maxThreads")
	}
	if c.Weather.WeatherMaxDuration > 0 && c.Weather.WeatherMaxDuration < c.Weather.WeatherMinDuration {
		return errors.New("weather.weatherMaxDuration must be >= weatherMinDuration")
	}
	if c.Weather.SnowChance < 0 || c.Weather.RainChance < 0 || c.Weather.ThunderChance < 0 {
		return errors.New("weather chances cannot be negative")
	}
	if c.Weather.SnowChance+c.Weather.RainChance+c.Weather.ThunderChance > 1.0 {
		return errors.New("weather snow+rain+thunder chance must be <= 1")
	}
	return nil
}

// MaxY is the exclusive world ceiling.
func (w WorldConfig) MaxY() int {
	return w.MinY + w.Height
}
