package prefetch

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"earthlod/internal/config"
)

// Task is a best-effort unit of cache warming.
type Task func()

// Bounds is the resolved worker range of a scheduler.
type Bounds struct {
	Min int
	Max int
}

// ThreadBounds resolves configured worker counts, deriving unset values
// from GOMAXPROCS.
func ThreadBounds(cfg config.PrefetchConfig) Bounds {
	maxThreads := cfg.MaxThreads
	if maxThreads <= 0 {
		maxThreads = min(8, max(2, runtime.GOMAXPROCS(0)*2))
	}
	minThreads := cfg.MinThreads
	if minThreads <= 0 {
		minThreads = min(2, maxThreads)
	}
	if minThreads > maxThreads {
		minThreads = maxThreads
	}
	return Bounds{Min: minThreads, Max: maxThreads}
}

const (
	defaultQueueSize = 256
	defaultKeepAlive = 30 * time.Second
)

// Stats is a point-in-time view of a scheduler.
type Stats struct {
	Core      int
	Workers   int
	Active    int
	Queued    int
	Submitted int64
	Dropped   int64
	Completed int64
}

// Scheduler is a bounded worker pool whose core size follows the backlog.
// Workers above the core size retire after sitting idle for the keep-alive.
type Scheduler struct {
	bounds    Bounds
	keepAlive time.Duration
	logger    *log.Logger
	tasks     chan Task
	done      chan struct{}
	wg        sync.WaitGroup

	mu      sync.Mutex
	core    int
	workers int
	active  int
	closed  bool

	submitted atomic.Int64
	dropped   atomic.Int64
	completed atomic.Int64
}

func NewScheduler(cfg config.PrefetchConfig, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(log.Writer(), "prefetch ", log.LstdFlags|log.Lmicroseconds)
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = defaultQueueSize
	}
	keepAlive := cfg.KeepAlive.Duration()
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	bounds := ThreadBounds(cfg)
	s := &Scheduler{
		bounds:    bounds,
		keepAlive: keepAlive,
		logger:    logger,
		tasks:     make(chan Task, queue),
		done:      make(chan struct{}),
		core:      bounds.Min,
	}
	s.mu.Lock()
	s.spawnLocked()
	s.mu.Unlock()
	return s
}

// Submit queues task without blocking. It returns false when the queue is
// full or the scheduler is closed; the task is then dropped.
func (s *Scheduler) Submit(task Task) bool {
	if task == nil {
		return false
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.adjustLocked()
	s.mu.Unlock()

	select {
	case s.tasks <- task:
		s.submitted.Add(1)
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// adjustLocked grows the core by one under backlog and snaps it back to the
// minimum once the pool drains.
func (s *Scheduler) adjustLocked() {
	backlog := len(s.tasks)
	switch {
	case backlog > 2*s.active && s.core < s.bounds.Max:
		s.core++
	case backlog == 0 && s.active <= s.bounds.Min && s.core > s.bounds.Min:
		s.core = s.bounds.Min
	}
	s.spawnLocked()
}

func (s *Scheduler) spawnLocked() {
	for s.workers < s.core {
		s.workers++
		s.wg.Add(1)
		go s.work()
	}
}

func (s *Scheduler) work() {
	defer s.wg.Done()
	idle := time.NewTimer(s.keepAlive)
	defer idle.Stop()
	for {
		select {
		case task := <-s.tasks:
			s.run(task)
			idle.Reset(s.keepAlive)
		case <-idle.C:
			if s.retire() {
				return
			}
			idle.Reset(s.keepAlive)
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) retire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workers > s.core {
		s.workers--
		return true
	}
	return false
}

func (s *Scheduler) run(task Task) {
	s.mu.Lock()
	s.active++
	s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("prefetch task panicked: %v", r)
		}
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
		s.completed.Add(1)
	}()
	task()
}

// Stats reports the current pool state.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Core:      s.core,
		Workers:   s.workers,
		Active:    s.active,
		Queued:    len(s.tasks),
		Submitted: s.submitted.Load(),
		Dropped:   s.dropped.Load(),
		Completed: s.completed.Load(),
	}
}

// Bounds returns the resolved worker range.
func (s *Scheduler) Bounds() Bounds {
	return s.bounds
}

// Close stops the workers and waits for running tasks. Queued tasks that
// have not started are discarded.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()
	s.wg.Wait()
}
