package weather

// Mode is the current precipitation type.
type Mode string

const (
	ModeClear   Mode = "clear"
	ModeRain    Mode = "rain"
	ModeSnow    Mode = "snow"
	ModeThunder Mode = "thunder"
)

// SnowCover answers whether snow lies at a block coordinate.
type SnowCover interface {
	ShouldApplySnow(x, z int) bool
}

// Service exposes live weather state. Implementations may change between
// calls; callers capture a Snapshot once per build.
type Service interface {
	SnowCover
	WeatherEnabled() bool
	PrecipitationMode() Mode
	HistoricalSnowEnabled() bool
}

// Snapshotter is implemented by services that can hand out a consistent,
// immutable view of their state.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Snapshot is an immutable view of weather state used for one tile build.
type Snapshot struct {
	Enabled        bool
	Mode           Mode
	HistoricalSnow bool
	cover          SnowCover
}

// NewSnapshot builds a snapshot around an immutable snow cover.
func NewSnapshot(enabled bool, mode Mode, historical bool, cover SnowCover) Snapshot {
	return Snapshot{Enabled: enabled, Mode: mode, HistoricalSnow: historical, cover: cover}
}

// Capture reads svc once. A nil service yields a disabled snapshot.
func Capture(svc Service) Snapshot {
	if svc == nil {
		return Snapshot{}
	}
	if s, ok := svc.(Snapshotter); ok {
		return s.Snapshot()
	}
	return Snapshot{
		Enabled:        svc.WeatherEnabled(),
		Mode:           svc.PrecipitationMode(),
		HistoricalSnow: svc.HistoricalSnowEnabled(),
		cover:          svc,
	}
}

// SnowActive reports whether snowfall or persisted snow can whiten surfaces.
func (s Snapshot) SnowActive() bool {
	return (s.Enabled && s.Mode == ModeSnow) || s.HistoricalSnow
}

// ShouldApplySnow reports whether the top block at (x, z) becomes snow.
func (s Snapshot) ShouldApplySnow(x, z int) bool {
	if !s.SnowActive() || s.cover == nil {
		return false
	}
	return s.cover.ShouldApplySnow(x, z)
}

// Everywhere is a SnowCover that reports snow at every coordinate.
type Everywhere struct{}

func (Everywhere) ShouldApplySnow(int, int) bool { return true }
