package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	getter "github.com/hashicorp/go-getter"
	"golang.org/x/time/rate"

	"earthlod/internal/geo"
)

// Fetcher downloads one remote file to dst.
type Fetcher interface {
	Fetch(ctx context.Context, dst, src string) error
}

// getterFetcher resolves sources through go-getter, so http(s), s3, gcs and
// local file sources all work.
type getterFetcher struct{}

func (getterFetcher) Fetch(ctx context.Context, dst, src string) error {
	return getter.GetFile(dst, src, getter.WithContext(ctx))
}

// plan describes a rectangular tile range to mirror locally.
type plan struct {
	Source     string // URL template with {kind}, {x} and {z}
	Out        string
	Kinds      []geo.Kind
	MinX, MinZ int
	MaxX, MaxZ int
	TileSize   int
	Compressed bool
	Force      bool
}

// sourceURL expands the template for one tile.
func (p plan) sourceURL(kind geo.Kind, tx, tz int) string {
	r := strings.NewReplacer(
		"{kind}", kind.String(),
		"{x}", strconv.Itoa(tx),
		"{z}", strconv.Itoa(tz),
	)
	return r.Replace(p.Source)
}

func (p plan) localPath(kind geo.Kind, tx, tz int) string {
	path := geo.TilePath(p.Out, kind, tx, tz)
	if p.Compressed {
		path += ".zst"
	}
	return path
}

func (p plan) total() int {
	return len(p.Kinds) * (p.MaxX - p.MinX + 1) * (p.MaxZ - p.MinZ + 1)
}

type result struct {
	Fetched int
	Skipped int
	Failed  int
}

// run downloads every missing tile in the plan, pacing requests through
// limiter, and checks each download decodes as a tile.
func run(ctx context.Context, p plan, fetcher Fetcher, limiter *rate.Limiter, logger *log.Logger) (result, error) {
	var res result
	if p.MaxX < p.MinX || p.MaxZ < p.MinZ {
		return res, fmt.Errorf("empty tile range x[%d,%d] z[%d,%d]", p.MinX, p.MaxX, p.MinZ, p.MaxZ)
	}
	loader := geo.NewDirLoader(p.Out, p.TileSize)
	total := p.total()
	done := 0
	nextPct := 10

	for _, kind := range p.Kinds {
		for tz := p.MinZ; tz <= p.MaxZ; tz++ {
			for tx := p.MinX; tx <= p.MaxX; tx++ {
				done++
				dst := p.localPath(kind, tx, tz)
				if !p.Force {
					if _, err := os.Stat(dst); err == nil {
						res.Skipped++
						continue
					}
				}
				if err := limiter.Wait(ctx); err != nil {
					return res, fmt.Errorf("wait for rate limiter: %w", err)
				}
				src := p.sourceURL(kind, tx, tz)
				if err := fetcher.Fetch(ctx, dst, src); err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return res, err
					}
					logger.Printf("fetch %s: %v", src, err)
					res.Failed++
					continue
				}
				if _, err := loader.LoadTile(ctx, kind, tx, tz); err != nil {
					logger.Printf("discarding %s: %v", dst, err)
					os.Remove(dst)
					res.Failed++
					continue
				}
				res.Fetched++

				if pct := done * 100 / total; pct >= nextPct {
					logger.Printf("tile fetch progress: %d%%", pct)
					nextPct = (pct/10 + 1) * 10
				}
			}
		}
	}
	return res, nil
}
