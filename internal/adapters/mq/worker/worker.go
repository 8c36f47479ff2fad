// Package worker scores queued XP events and credits them to the leaderboard.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/scoring"
	"github.com/okian/teamforge/pkg/logger"
	"github.com/okian/teamforge/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = model.XPEvent

// Crediter adds XP to a participant's total.
type Crediter interface {
	Add(ctx context.Context, participantID string, xp float64) (float64, error)
}

// Source yields events until it is closed.
type Source interface {
	Dequeue() <-chan Event
}

// InMemoryWorker processes events from a Source.
type InMemoryWorker struct {
	source   Source
	scorer   scoring.Scorer
	crediter Crediter
	name     string
	logger   logger.Logger
	onDone   func(ok bool)
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(source Source, scorer scoring.Scorer, crediter Crediter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		scorer:   scorer,
		crediter: crediter,
		name:     "worker",
		onDone:   func(bool) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes events until the source closes or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	events := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			err := w.processEvent(ctx, event)
			if err != nil {
				w.logger.Error(ctx, "error processing event", logger.String("event_id", event.EventID), logger.Error(err))
			}
			w.onDone(err == nil)
		}
	}
}

func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: value from channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	scoreStart := time.Now()
	res, err := w.scorer.Score(ctx, scoring.Input{
		ParticipantID: event.ParticipantID,
		Activity:      event.Activity,
		RawMetric:     event.RawMetric,
	})
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		return fmt.Errorf("failed to score event %s: %w", event.EventID, err)
	}

	total, err := w.crediter.Add(ctx, res.ParticipantID, res.XP)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "leaderboard_error")
		return fmt.Errorf("leaderboard update failed: %w", err)
	}

	metrics.RecordXPEventProcessed()
	w.logger.Debug(ctx, "xp credited",
		logger.String("participant_id", res.ParticipantID),
		logger.Float64("xp", res.XP),
		logger.Float64("total", total),
	)
	return nil
}

// Stats are the pool counters.
type Stats struct {
	Workers   int
	Processed int64
	Failed    int64
}

// Pool runs a fixed set of workers over one source.
type Pool struct {
	workers []*InMemoryWorker
	source  Source
	logger  logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool of workerCount workers; values below 1 pick a
// count from the number of CPUs.
func NewPool(workerCount int, source Source, scorer scoring.Scorer, crediter Crediter) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		source:  source,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(source, scorer, crediter,
			WithName("worker-"+strconv.Itoa(i)),
			withCompletion(p.record),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)
	return p
}

func (p *Pool) record(ok bool) {
	if ok {
		p.processed.Add(1)
		return
	}
	p.failed.Add(1)
}

// Start launches every worker. Workers stop when the source closes or ctx
// is cancelled.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	var active atomic.Int64
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			n := active.Add(1)
			metrics.UpdateWorkerActiveCount(int(n))
			metrics.UpdateWorkerIdleCount(len(p.workers) - int(n))
			w.Run(ctx)
			n = active.Add(-1)
			metrics.UpdateWorkerActiveCount(int(n))
			metrics.UpdateWorkerIdleCount(len(p.workers) - int(n))
		}(w)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the source so workers drain what is buffered, then waits
// for them. If ctx expires first the workers are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timeout, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	select {
	case <-done:
		return nil
	case <-timeout.Done():
		if p.cancel != nil {
			p.cancel()
		}
		<-done
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown: %w", timeout.Err())
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}
