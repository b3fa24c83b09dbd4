package lod

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"earthlod/internal/world"
)

// Executor runs submitted work, typically on a worker pool.
type Executor interface {
	Execute(task func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(task func())

func (f ExecutorFunc) Execute(task func()) {
	f(task)
}

// Generator runs tile builds asynchronously. Worker contexts are pooled so
// each build owns one exclusively while it runs.
type Generator struct {
	builder  *Builder
	contexts sync.Pool
}

func NewGenerator(b *Builder) *Generator {
	g := &Generator{builder: b}
	g.contexts.New = func() any {
		return b.NewWorkerContext()
	}
	return g
}

// Generate submits one tile build to exec and returns a channel that
// receives the build error (nil on success) and is then closed. A nil exec
// runs the build on a new goroutine.
func (g *Generator) Generate(ctx context.Context, req Request, sink world.Sink, exec Executor) <-chan error {
	done := make(chan error, 1)
	task := func() {
		defer close(done)
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		if sink != nil && g.builder.warmer.Enabled() {
			g.builder.Prefetch(req, sink.Width())
		}
		wc := g.contexts.Get().(*WorkerContext)
		defer g.contexts.Put(wc)
		_, err := g.builder.BuildTile(wc, req, sink)
		done <- err
	}
	if exec == nil {
		go task()
	} else {
		exec.Execute(task)
	}
	return done
}

// GenerateAll builds every request on a fixed set of workers, each owning
// one WorkerContext. sinkFor supplies the destination of each tile. The
// first failure cancels the remaining builds.
func (g *Generator) GenerateAll(ctx context.Context, reqs []Request, sinkFor func(Request) world.Sink, workers int) ([]TileStats, error) {
	results := make([]TileStats, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(reqs))

	group, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	group.Go(func() error {
		defer close(jobs)
		for i := range reqs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	progress := newProgress(g.builder, len(reqs))
	for w := 0; w < workers; w++ {
		group.Go(func() error {
			wc := g.builder.NewWorkerContext()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				req := reqs[i]
				sink := sinkFor(req)
				if sink != nil && g.builder.warmer.Enabled() {
					g.builder.Prefetch(req, sink.Width())
				}
				stats, err := g.builder.BuildTile(wc, req, sink)
				if err != nil {
					return fmt.Errorf("build tile %v: %w", req, err)
				}
				results[i] = stats
				progress.done()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	progress.finish()
	return results, nil
}

type progress struct {
	mu        sync.Mutex
	builder   *Builder
	total     int
	completed int
	next      int
	logged    bool
}

func newProgress(b *Builder, total int) *progress {
	b.logger.Printf("lod generation progress: 0%% of %d tiles", total)
	return &progress{builder: b, total: total, next: 10}
}

func (p *progress) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	pct := p.completed * 100 / p.total
	if pct < p.next {
		return
	}
	pct = min(pct, 100)
	p.builder.logger.Printf("lod generation progress: %d%%", pct)
	if pct >= 100 {
		p.logged = true
		p.next = 110
		return
	}
	p.next = (pct/10 + 1) * 10
}

func (p *progress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.logged {
		p.builder.logger.Printf("lod generation progress: 100%%")
	}
}
