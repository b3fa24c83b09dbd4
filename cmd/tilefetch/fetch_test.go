package main

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"earthlod/internal/geo"
)

// fakeFetcher writes tiles of the given size, or a short file for sources
// containing "broken".
type fakeFetcher struct {
	mu   sync.Mutex
	size int
	srcs []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, dst, src string) error {
	f.mu.Lock()
	f.srcs = append(f.srcs, src)
	f.mu.Unlock()
	if strings.Contains(src, "missing") {
		return errors.New("404")
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	n := f.size * f.size
	if strings.Contains(src, "broken") {
		n = 3
	}
	file, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer file.Close()
	return binary.Write(file, binary.LittleEndian, make([]float32, n))
}

func unlimited() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestPlanSourceURL(t *testing.T) {
	p := plan{Source: "https://tiles.example/{kind}/{x}_{z}.bin"}
	if got := p.sourceURL(geo.KindCover, -2, 5); got != "https://tiles.example/landcover/-2_5.bin" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestRunFetchesAndSkipsExisting(t *testing.T) {
	out := t.TempDir()
	p := plan{
		Source:   "mem://{kind}/{x}/{z}",
		Out:      out,
		Kinds:    []geo.Kind{geo.KindElevation, geo.KindClimate},
		MinX:     0,
		MaxX:     1,
		MinZ:     -1,
		MaxZ:     0,
		TileSize: 4,
	}
	fetcher := &fakeFetcher{size: 4}
	logger := log.New(io.Discard, "", 0)

	res, err := run(context.Background(), p, fetcher, unlimited(), logger)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Fetched != 8 || res.Skipped != 0 || res.Failed != 0 {
		t.Fatalf("unexpected first result %+v", res)
	}

	loader := geo.NewDirLoader(out, 4)
	if _, err := loader.LoadTile(context.Background(), geo.KindClimate, 1, -1); err != nil {
		t.Fatalf("fetched tile unreadable: %v", err)
	}

	res, err = run(context.Background(), p, fetcher, unlimited(), logger)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Fetched != 0 || res.Skipped != 8 {
		t.Fatalf("expected all tiles skipped, got %+v", res)
	}
}

func TestRunDiscardsInvalidTiles(t *testing.T) {
	out := t.TempDir()
	p := plan{
		Source:   "mem://broken/{kind}/{x}/{z}",
		Out:      out,
		Kinds:    []geo.Kind{geo.KindElevation},
		TileSize: 4,
	}
	res, err := run(context.Background(), p, &fakeFetcher{size: 4}, unlimited(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("expected one failure, got %+v", res)
	}
	if _, err := os.Stat(geo.TilePath(out, geo.KindElevation, 0, 0)); !os.IsNotExist(err) {
		t.Fatalf("expected invalid tile removed, stat err %v", err)
	}

	p.Source = "mem://missing/{kind}/{x}/{z}"
	res, err = run(context.Background(), p, &fakeFetcher{size: 4}, unlimited(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("expected fetch failure counted, got %+v", res)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := plan{
		Source:   "mem://{kind}/{x}/{z}",
		Out:      t.TempDir(),
		Kinds:    []geo.Kind{geo.KindElevation},
		MaxX:     3,
		TileSize: 4,
	}
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	limiter.Allow()
	if _, err := run(ctx, p, &fakeFetcher{size: 4}, limiter, log.New(io.Discard, "", 0)); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestRunRejectsEmptyRange(t *testing.T) {
	p := plan{Out: t.TempDir(), Kinds: geo.Kinds, MinX: 2, MaxX: 1, TileSize: 4}
	if _, err := run(context.Background(), p, &fakeFetcher{size: 4}, unlimited(), log.New(io.Discard, "", 0)); err == nil {
		t.Fatalf("expected range error")
	}
}
