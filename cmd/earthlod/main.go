package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"earthlod/internal/config"
	"earthlod/internal/world"
)

func main() {
	var (
		cfgPath string
		detail  int
		radius  int
		width   int
		workers int
		originX int
		originZ int
	)
	flag.StringVar(&cfgPath, "config", "", "path to generator configuration file")
	flag.IntVar(&detail, "detail", -1, "detail level; defaults to lod.defaultDetail")
	flag.IntVar(&radius, "radius", -1, "tiles around the origin; defaults to lod.gridRadius")
	flag.IntVar(&width, "width", 0, "data columns per tile side; defaults to lod.tileWidth")
	flag.IntVar(&workers, "workers", -1, "tile workers; defaults to lod.workers")
	flag.IntVar(&originX, "x", 0, "origin chunk x")
	flag.IntVar(&originZ, "z", 0, "origin chunk z")
	flag.Parse()

	logger := log.New(log.Writer(), "earthlod ", log.LstdFlags|log.Lmicroseconds)

	if wrote, err := writeConfigFromEnv(cfgPath); err != nil {
		logger.Fatalf("sync config from environment: %v", err)
	} else if wrote {
		logger.Printf("wrote configuration from environment to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Printf("load config: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv(os.LookupEnv)

	if detail >= 0 {
		cfg.LOD.DefaultDetail = detail
	}
	if radius >= 0 {
		cfg.LOD.GridRadius = radius
	}
	if width > 0 {
		cfg.LOD.TileWidth = width
	}
	if workers >= 0 {
		cfg.LOD.Workers = workers
	}
	if cfg.LOD.DefaultDetail < 0 || cfg.LOD.DefaultDetail > cfg.LOD.MaxDetail {
		logger.Fatalf("detail %d outside [0, %d]", cfg.LOD.DefaultDetail, cfg.LOD.MaxDetail)
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		logger.Fatalf("initialise pipeline: %v", err)
	}
	defer p.Close()

	ctx, cancel := signalContext()
	defer cancel()

	reqs := tileRequests(originX, originZ, cfg.LOD.GridRadius, cfg.LOD.TileWidth, uint8(cfg.LOD.DefaultDetail))
	started := time.Now()
	stats, err := p.run(ctx, reqs, newTileSinks(cfg.LOD.TileWidth, world.MemoryProvider))
	if err != nil {
		logger.Fatalf("generate tiles: %v", err)
	}
	for _, s := range stats {
		logger.Printf("tile %v: cover stride %d, water stride %d, detailed water %v (%d samples), %d water columns, %d layers",
			s.Request, s.CoverStride, s.WaterStride, s.DetailedWater, s.DetailedSamples, s.WaterColumns, s.Layers)
	}
	ps := p.scheduler.Stats()
	logger.Printf("generated %d tiles in %s; prefetch submitted %d, dropped %d, raster tiles cached %d",
		len(stats), time.Since(started).Round(time.Millisecond), ps.Submitted, ps.Dropped, p.layer.CachedTiles())
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
