package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/time/rate"

	"earthlod/internal/config"
	"earthlod/internal/geo"
)

func main() {
	var (
		cfgPath    = flag.String("config", "", "configuration file supplying geo.tileDir and geo.tileSize")
		source     = flag.String("source", "", "tile URL template, e.g. https://host/tiles/{kind}/{x}_{z}.bin")
		out        = flag.String("o", "", "output directory; defaults to geo.tileDir")
		kinds      = flag.String("kinds", "elevation,landcover,climate", "comma separated raster kinds")
		minX       = flag.Int("minx", 0, "first tile x")
		minZ       = flag.Int("minz", 0, "first tile z")
		maxX       = flag.Int("maxx", 0, "last tile x")
		maxZ       = flag.Int("maxz", 0, "last tile z")
		perSecond  = flag.Float64("rate", 4, "requests per second")
		burst      = flag.Int("burst", 2, "request burst")
		compressed = flag.Bool("zst", false, "source tiles are zstd compressed")
		force      = flag.Bool("force", false, "download tiles that already exist")
	)
	flag.Parse()

	logger := log.New(log.Writer(), "tilefetch ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *source == "" {
		logger.Fatalf("-source is required")
	}
	dir := *out
	if dir == "" {
		dir = cfg.Geo.TileDir
	}
	if dir == "" {
		logger.Fatalf("output directory required (-o or geo.tileDir)")
	}

	p := plan{
		Source:     *source,
		Out:        dir,
		MinX:       *minX,
		MinZ:       *minZ,
		MaxX:       *maxX,
		MaxZ:       *maxZ,
		TileSize:   cfg.Geo.TileSize,
		Compressed: *compressed,
		Force:      *force,
	}
	for _, name := range strings.Split(*kinds, ",") {
		kind, err := geo.ParseKind(strings.TrimSpace(name))
		if err != nil {
			logger.Fatalf("parse kinds: %v", err)
		}
		p.Kinds = append(p.Kinds, kind)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Printf("start fetching %d tiles into %s", p.total(), dir)
	res, err := run(ctx, p, getterFetcher{}, rate.NewLimiter(rate.Limit(*perSecond), max(1, *burst)), logger)
	if err != nil {
		logger.Fatalf("fetch tiles: %v", err)
	}
	logger.Printf("done: %d fetched, %d skipped, %d failed", res.Fetched, res.Skipped, res.Failed)
	if res.Failed > 0 {
		os.Exit(1)
	}
}
