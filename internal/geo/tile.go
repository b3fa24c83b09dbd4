package geo

import (
	"context"
	"fmt"
)

// Kind identifies a raster source.
type Kind uint8

const (
	KindElevation Kind = iota
	KindCover
	KindClimate
)

func (k Kind) String() string {
	switch k {
	case KindElevation:
		return "elevation"
	case KindCover:
		return "landcover"
	case KindClimate:
		return "climate"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Resolution returns the ground size of one pixel in meters.
func (k Kind) Resolution() float64 {
	switch k {
	case KindElevation:
		return 30
	case KindCover:
		return 10
	case KindClimate:
		return 1000
	default:
		return 30
	}
}

// Kinds lists every raster kind in a stable order.
var Kinds = []Kind{KindElevation, KindCover, KindClimate}

// ParseKind accepts the directory names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown raster kind %q", s)
}

// Tile is one square block of raster pixels. Data is row-major by z then x.
// Missing tiles stand in for fetch failures and sample as defaults.
type Tile struct {
	Kind    Kind
	X, Z    int
	Size    int
	Data    []float32
	Missing bool
}

// At returns the pixel at tile-local coordinates.
func (t *Tile) At(px, pz int) float32 {
	return t.Data[pz*t.Size+px]
}

// Validate checks the payload matches the advertised size.
func (t *Tile) Validate() error {
	if t.Size <= 0 {
		return fmt.Errorf("tile %s %d,%d: size %d must be positive", t.Kind, t.X, t.Z, t.Size)
	}
	if len(t.Data) != t.Size*t.Size {
		return fmt.Errorf("tile %s %d,%d: have %d pixels, want %d", t.Kind, t.X, t.Z, len(t.Data), t.Size*t.Size)
	}
	return nil
}

// TileLoader fetches raw tiles. Implementations must be safe for concurrent use.
type TileLoader interface {
	LoadTile(ctx context.Context, kind Kind, tx, tz int) (*Tile, error)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
