package config

import (
	"os"
	"strconv"
	"time"
)

// Environment keys recognised by ApplyEnv.
const (
	EnvPrefetchEnabled      = "EARTHLOD_PREFETCH_ENABLED"
	EnvPrefetchLandCover    = "EARTHLOD_PREFETCH_LANDCOVER_RADIUS"
	EnvPrefetchElevation    = "EARTHLOD_PREFETCH_ELEVATION_RADIUS"
	EnvPrefetchWaterEnabled = "EARTHLOD_PREFETCH_WATER_ENABLED"
	EnvPrefetchWaterRadius  = "EARTHLOD_PREFETCH_WATER_RADIUS"
	EnvPrefetchThreads      = "EARTHLOD_PREFETCH_THREADS"
	EnvPrefetchThreadsMin   = "EARTHLOD_PREFETCH_THREADS_MIN"
	EnvPrefetchThreadsMax   = "EARTHLOD_PREFETCH_THREADS_MAX"
	EnvPrefetchQueue        = "EARTHLOD_PREFETCH_QUEUE"
	EnvPrefetchKeepAlive    = "EARTHLOD_PREFETCH_KEEPALIVE"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays prefetch overrides from the environment. Values that fail
// to parse leave the current setting untouched.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	p := &c.Prefetch
	p.Enabled = boolEnv(lookup, EnvPrefetchEnabled, p.Enabled)
	p.LandCoverRadius = radiusEnv(lookup, EnvPrefetchLandCover, p.LandCoverRadius)
	p.ElevationRadius = radiusEnv(lookup, EnvPrefetchElevation, p.ElevationRadius)
	p.WaterEnabled = boolEnv(lookup, EnvPrefetchWaterEnabled, p.WaterEnabled)
	p.WaterRadius = radiusEnv(lookup, EnvPrefetchWaterRadius, p.WaterRadius)
	p.QueueSize = radiusEnv(lookup, EnvPrefetchQueue, p.QueueSize)

	// The legacy single thread count only applies when no explicit max is set.
	if v, ok := intEnv(lookup, EnvPrefetchThreadsMax); ok {
		p.MaxThreads = v
	} else if v, ok := intEnv(lookup, EnvPrefetchThreads); ok {
		p.MaxThreads = v
	}
	if v, ok := intEnv(lookup, EnvPrefetchThreadsMin); ok {
		p.MinThreads = v
	}
	if raw, ok := lookup(EnvPrefetchKeepAlive); ok {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			p.KeepAlive = Duration(d)
		}
	}
}

func boolEnv(lookup LookupFunc, key string, fallback bool) bool {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// radiusEnv parses a non-negative integer, clamping negatives to zero.
func radiusEnv(lookup LookupFunc, key string, fallback int) int {
	v, ok := intEnv(lookup, key)
	if !ok {
		return fallback
	}
	if v < 0 {
		return 0
	}
	return v
}

func intEnv(lookup LookupFunc, key string) (int, bool) {
	raw, ok := lookup(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
