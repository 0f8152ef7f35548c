// Package worker fans lineup scoring out over a fixed set of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/scoring"
	"github.com/okian/gigmatch/pkg/logger"
	"github.com/okian/gigmatch/pkg/metrics"
)

// Default worker configuration constants.
const (
	jobBufferPerWorker  = 4
	poolShutdownTimeout = 30 * time.Second
)

// job scores one performance into out.
type job struct {
	ctx     context.Context //nolint:containedctx // per-batch cancellation travels with the job
	perf    *model.Performance
	profile *model.UserProfile
	out     *model.ScoredPerformance
	wg      *sync.WaitGroup
}

// Worker consumes scoring jobs.
type Worker interface {
	// Run starts the worker loop until Shutdown is called.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker scores performances read from a job channel.
type InMemoryWorker struct {
	jobs   <-chan job
	scorer scoring.Scorer
	active *atomic.Int64
	name   string

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once

	logger logger.Logger
}

func newInMemoryWorker(jobs <-chan job, scorer scoring.Scorer, active *atomic.Int64, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		jobs:     jobs,
		scorer:   scorer,
		active:   active,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. The loop ends on Shutdown, not on ctx, so that
// jobs already handed to the pool are always completed.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-w.shutdown:
			w.logger.Debug(ctx, "worker stopped")
			return
		case j := <-w.jobs:
			w.process(j)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(j job) {
	defer j.wg.Done()
	if j.ctx.Err() != nil {
		return
	}

	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	*j.out = scoring.ScorePerformance(w.scorer, j.perf, j.profile)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordPerformanceScored(string(j.out.Match.MatchType))
	metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
}

// Pool manages the scoring workers.
type Pool struct {
	workers []*InMemoryWorker
	jobs    chan job
	active  atomic.Int64

	mu      sync.RWMutex
	started bool
	closed  bool

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below 1 uses one
// worker per CPU. Options are applied to every worker.
func NewPool(workerCount int, scorer scoring.Scorer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		jobs:    make(chan job, workerCount*jobBufferPerWorker),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = newInMemoryWorker(p.jobs, scorer, &p.active, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// ScoreLineup scores every performance of a lineup against a profile and
// returns the results in lineup order. Cancelling ctx aborts the batch.
func (p *Pool) ScoreLineup(ctx context.Context, lineup []model.Performance, profile *model.UserProfile) ([]model.ScoredPerformance, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case p.closed:
		return nil, ErrPoolClosed
	case !p.started:
		return nil, ErrPoolNotStarted
	}

	start := time.Now()
	out := make([]model.ScoredPerformance, len(lineup))
	var wg sync.WaitGroup

	var err error
submit:
	for i := range lineup {
		wg.Add(1)
		select {
		case p.jobs <- job{ctx: ctx, perf: &lineup[i], profile: profile, out: &out[i], wg: &wg}:
		case <-ctx.Done():
			wg.Done()
			err = ctx.Err()
			break submit
		}
	}
	// Workers outlive the read lock, so submitted jobs always finish.
	wg.Wait()

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "batch_aborted")
		return nil, fmt.Errorf("score lineup: %w", err)
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// Shutdown stops accepting batches, lets in-flight batches finish and stops
// the workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
