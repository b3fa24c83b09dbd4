package geo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeLoader struct {
	size  int
	loads atomic.Int32
	fail  bool
	value func(kind Kind, px, pz int) float32
}

func (f *fakeLoader) LoadTile(ctx context.Context, kind Kind, tx, tz int) (*Tile, error) {
	f.loads.Add(1)
	if f.fail {
		return nil, errors.New("backend offline")
	}
	t := &Tile{Kind: kind, X: tx, Z: tz, Size: f.size, Data: make([]float32, f.size*f.size)}
	for pz := 0; pz < f.size; pz++ {
		for px := 0; px < f.size; px++ {
			t.Data[pz*f.size+px] = f.value(kind, tx*f.size+px, tz*f.size+pz)
		}
	}
	return t, nil
}

func quietLayer(loader TileLoader, size int) *Layer {
	return NewLayer(loader, LayerOptions{TileSize: size, CacheSize: 64, Logger: log.New(io.Discard, "", 0)})
}

func TestLayerSamplesNearestClasses(t *testing.T) {
	loader := &fakeLoader{size: 8, value: func(kind Kind, px, pz int) float32 {
		switch kind {
		case KindCover:
			if px < 0 {
				return float32(CoverWater)
			}
			return float32(CoverTree)
		case KindClimate:
			return float32(ClimateCf)
		}
		return 100
	}}
	layer := quietLayer(loader, 8)

	// worldScale 10 maps one block to one cover pixel.
	if got := layer.SampleCoverClass(3, 3, 10); got != CoverTree {
		t.Fatalf("cover at 3,3: got %s want tree", got)
	}
	if got := layer.SampleCoverClass(-1, 3, 10); got != CoverWater {
		t.Fatalf("cover at -1,3: got %s want water", got)
	}
	if got := layer.SampleClimateClass(0, 0, 10); got != ClimateCf {
		t.Fatalf("climate: got %s want Cf", got)
	}
	if got := layer.SampleElevation(5, 5, 30); got != 100 {
		t.Fatalf("flat elevation: got %v want 100", got)
	}
}

func TestLayerInterpolatesElevation(t *testing.T) {
	loader := &fakeLoader{size: 16, value: func(kind Kind, px, pz int) float32 {
		return float32(px * 10)
	}}
	layer := quietLayer(loader, 16)

	// worldScale 30 maps one block to one elevation pixel; pixel centers line
	// up with block centers so the ramp is reproduced exactly.
	for x := 0; x < 8; x++ {
		got := layer.SampleElevation(x, 0, 30)
		if want := float64(x * 10); got != want {
			t.Fatalf("elevation at %d: got %v want %v", x, got, want)
		}
	}
	// At half scale block 5 lands a quarter of the way from pixel 2 to 3.
	if got := layer.SampleElevation(5, 0, 15); got != 22.5 {
		t.Fatalf("expected interpolated 22.5, got %v", got)
	}
}

func TestLayerLoadsEachTileOnce(t *testing.T) {
	loader := &fakeLoader{size: 32, value: func(Kind, int, int) float32 { return 1 }}
	layer := quietLayer(loader, 32)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			layer.SampleCoverClass(i%4, i%3, 10)
		}(i)
	}
	wg.Wait()
	if got := loader.loads.Load(); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}

	layer.PrefetchTiles(KindCover, 0, 0, 10, 0)
	if got := loader.loads.Load(); got != 1 {
		t.Fatalf("prefetch of a cached tile should not reload, got %d loads", got)
	}
	layer.PrefetchTiles(KindCover, 0, 0, 10, 1)
	if got := loader.loads.Load(); got != 9 {
		t.Fatalf("expected 9 loads after radius-1 prefetch, got %d", got)
	}
}

func TestLayerFallsBackOnFailure(t *testing.T) {
	var buf bytes.Buffer
	loader := &fakeLoader{size: 8, fail: true}
	layer := NewLayer(loader, LayerOptions{TileSize: 8, Logger: log.New(&buf, "", 0)})

	for i := 0; i < 5; i++ {
		if got := layer.SampleCoverClass(1, 1, 10); got != CoverNoData {
			t.Fatalf("cover fallback: got %s", got)
		}
		if got := layer.SampleElevation(1, 1, 30); got != 0 {
			t.Fatalf("elevation fallback: got %v", got)
		}
		if got := layer.SampleClimateClass(1, 1, 10); got != ClimateUnknown {
			t.Fatalf("climate fallback: got %s", got)
		}
	}
	lines := strings.Count(buf.String(), "unavailable")
	// One warning per failed tile; the elevation sample touches four tiles at most.
	if lines < 2 || lines > 6 {
		t.Fatalf("expected one warning per tile, got %d:\n%s", lines, buf.String())
	}
	if !strings.Contains(buf.String(), "backend offline") {
		t.Fatalf("expected cause in warning, got %q", buf.String())
	}
}

func TestLayerRejectsMismatchedTileSize(t *testing.T) {
	var buf bytes.Buffer
	loader := &fakeLoader{size: 128, value: func(kind Kind, px, pz int) float32 { return float32(CoverTree) }}
	layer := NewLayer(loader, LayerOptions{TileSize: 256, Logger: log.New(&buf, "", 0)})

	if got := layer.SampleCoverClass(2000, 2000, 10); got != CoverNoData {
		t.Fatalf("expected no-data fallback for a mismatched tile, got %s", got)
	}
	if got := layer.SampleElevation(2000, 2000, 30); got != 0 {
		t.Fatalf("expected elevation fallback, got %v", got)
	}
	if !strings.Contains(buf.String(), "does not match layer tile size") {
		t.Fatalf("expected size mismatch warning, got %q", buf.String())
	}
}

func TestDirLoaderRoundTrip(t *testing.T) {
	root := t.TempDir()
	size := 4
	for _, compress := range []bool{false, true} {
		tile := &Tile{Kind: KindElevation, X: -1, Z: 2, Size: size, Data: make([]float32, size*size)}
		for i := range tile.Data {
			tile.Data[i] = float32(i) * 1.5
		}
		if compress {
			tile.Kind = KindCover
		}
		if err := WriteTile(root, tile, compress); err != nil {
			t.Fatalf("write tile (compress=%v): %v", compress, err)
		}
		loaded, err := NewDirLoader(root, size).LoadTile(context.Background(), tile.Kind, -1, 2)
		if err != nil {
			t.Fatalf("load tile (compress=%v): %v", compress, err)
		}
		for i := range tile.Data {
			if loaded.Data[i] != tile.Data[i] {
				t.Fatalf("pixel %d mismatch: got %v want %v", i, loaded.Data[i], tile.Data[i])
			}
		}
	}

	if _, err := NewDirLoader(root, size).LoadTile(context.Background(), KindClimate, 0, 0); err == nil {
		t.Fatalf("expected missing tile to fail")
	}
}

func TestSyntheticLoaderDeterministic(t *testing.T) {
	opts := SyntheticOptions{TileSize: 16, Seed: 7}
	a, err := NewSyntheticLoader(opts).LoadTile(context.Background(), KindCover, 3, -2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := NewSyntheticLoader(opts).LoadTile(context.Background(), KindCover, 3, -2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("pixel %d differs between identical loaders", i)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSyntheticLoader(opts).LoadTile(ctx, KindElevation, 0, 0); err == nil {
		t.Fatalf("expected cancelled context to abort the load")
	}
}

func TestSyntheticCoverAgreesWithElevation(t *testing.T) {
	s := NewSyntheticLoader(SyntheticOptions{Seed: 42})
	for i := 0; i < 200; i++ {
		mx := float64(i) * 731
		mz := float64(i) * -417
		elev := s.ElevationAt(mx, mz)
		cover := s.CoverAt(mx, mz)
		if elev <= 0 && cover != CoverWater && cover != CoverNoData {
			t.Fatalf("submerged point (%v,%v) elev %v classed as %s", mx, mz, elev, cover)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		temp, humidity float64
		want           ClimateClass
	}{
		{temp: -20, humidity: 0.5, want: ClimateEF},
		{temp: -5, humidity: 0.5, want: ClimateET},
		{temp: 25, humidity: 0.1, want: ClimateBWh},
		{temp: 10, humidity: 0.1, want: ClimateBWk},
		{temp: 25, humidity: 0.3, want: ClimateBSh},
		{temp: 26, humidity: 0.9, want: ClimateAf},
		{temp: 26, humidity: 0.4, want: ClimateAw},
		{temp: 12, humidity: 0.8, want: ClimateCf},
		{temp: 2, humidity: 0.8, want: ClimateDf},
	}
	for _, tt := range tests {
		if got := Classify(tt.temp, tt.humidity); got != tt.want {
			t.Fatalf("Classify(%v, %v) = %s, want %s", tt.temp, tt.humidity, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("bathymetry"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
