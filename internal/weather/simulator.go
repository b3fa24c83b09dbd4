package weather

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"earthlod/internal/config"
)

// Simulator is a local weather source: it rolls precipitation on a seeded
// timer and carries the historical snow grid pushed to it.
type Simulator struct {
	mu           sync.Mutex
	cfg          config.WeatherConfig
	rng          *rand.Rand
	mode         Mode
	grid         *SnowGrid
	weatherTimer time.Duration
}

func NewSimulator(cfg config.WeatherConfig) *Simulator {
	cfg = applyDefaults(cfg)
	s := &Simulator{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		mode: ModeClear,
		grid: EmptySnowGrid(),
	}
	s.weatherTimer = s.randomWeatherDuration()
	return s
}

func applyDefaults(cfg config.WeatherConfig) config.WeatherConfig {
	if cfg.WeatherMinDuration <= 0 {
		cfg.WeatherMinDuration = config.Duration(90 * time.Second)
	}
	if cfg.WeatherMaxDuration < cfg.WeatherMinDuration {
		cfg.WeatherMaxDuration = cfg.WeatherMinDuration + config.Duration(2*time.Minute)
	}
	if cfg.SnowChance < 0 {
		cfg.SnowChance = 0
	}
	if cfg.RainChance < 0 {
		cfg.RainChance = 0
	}
	if cfg.ThunderChance < 0 {
		cfg.ThunderChance = 0
	}
	if total := cfg.SnowChance + cfg.RainChance + cfg.ThunderChance; total > 1 {
		cfg.SnowChance /= total
		cfg.RainChance /= total
		cfg.ThunderChance /= total
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg
}

// Step advances the weather clock and returns the resulting mode.
func (s *Simulator) Step(delta time.Duration) Mode {
	if delta <= 0 {
		delta = 16 * time.Millisecond
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weatherTimer -= delta
	for s.weatherTimer <= 0 {
		s.mode = s.rollWeather()
		s.weatherTimer += s.randomWeatherDuration()
	}
	return s.mode
}

// Run steps the weather clock by wall time on every tick until ctx is done.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Step(now.Sub(last))
			last = now
		}
	}
}

// SetMode forces the precipitation mode until the next roll.
func (s *Simulator) SetMode(mode Mode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
}

// UpdateSnowGrid swaps in a new historical snow grid.
func (s *Simulator) UpdateSnowGrid(grid *SnowGrid) {
	if grid == nil {
		grid = EmptySnowGrid()
	}
	s.mu.Lock()
	s.grid = grid
	s.mu.Unlock()
}

func (s *Simulator) rollWeather() Mode {
	roll := s.rng.Float64()
	switch {
	case roll < s.cfg.ThunderChance:
		return ModeThunder
	case roll < s.cfg.ThunderChance+s.cfg.SnowChance:
		return ModeSnow
	case roll < s.cfg.ThunderChance+s.cfg.SnowChance+s.cfg.RainChance:
		return ModeRain
	default:
		return ModeClear
	}
}

func (s *Simulator) randomWeatherDuration() time.Duration {
	minD := s.cfg.WeatherMinDuration.Duration()
	maxD := s.cfg.WeatherMaxDuration.Duration()
	if maxD <= minD {
		return minD
	}
	return minD + time.Duration(s.rng.Float64()*float64(maxD-minD))
}

func (s *Simulator) WeatherEnabled() bool {
	return s.cfg.Realtime
}

func (s *Simulator) PrecipitationMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Simulator) HistoricalSnowEnabled() bool {
	return s.cfg.HistoricalSnow
}

// ShouldApplySnow reports snow where the historical grid has it, and
// everywhere while it is snowing.
func (s *Simulator) ShouldApplySnow(x, z int) bool {
	return s.Snapshot().ShouldApplySnow(x, z)
}

// Snapshot captures mode and grid under one lock.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cover SnowCover = s.grid
	if s.cfg.Realtime && s.mode == ModeSnow {
		cover = Everywhere{}
	}
	return NewSnapshot(s.cfg.Realtime, s.mode, s.cfg.HistoricalSnow, cover)
}
