package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/repositories"
)

var (
	ErrWorkerStopped = errors.New("analysis worker is stopped")
	ErrQueueFull     = errors.New("analysis queue is full")
)

const (
	queueSize           = 100
	staleAnalysisReason = "analysis abandoned before completion"
)

// Worker runs analyses on a bounded pool, detached from the HTTP requests
// that submit them.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	// Submit queues an analysis and returns its event stream. The channel is
	// closed after the terminal event.
	Submit(req AnalysisRequest) (<-chan Event, error)
}

type WorkerOptions struct {
	Concurrency int
	// StaleAfter is how long an analysis may stay running before the sweeper
	// marks it as errored. Zero disables the sweeper.
	StaleAfter    time.Duration
	SweepInterval time.Duration
}

type analysisJob struct {
	req    AnalysisRequest
	events chan Event
}

type worker struct {
	analyses repositories.AnalysisRepository
	service  AnalysisService
	opts     WorkerOptions
	log      *zap.Logger

	jobQueue chan analysisJob
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	now     func() time.Time
}

func NewWorker(
	analyses repositories.AnalysisRepository,
	service AnalysisService,
	opts WorkerOptions,
	log *zap.Logger,
) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &worker{
		analyses: analyses,
		service:  service,
		opts:     opts,
		log:      logger.OrNop(log).Named("worker"),
		jobQueue: make(chan analysisJob, queueSize),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting analysis worker", zap.Int("concurrency", w.opts.Concurrency))

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.opts.StaleAfter > 0 && w.analyses != nil {
		w.wg.Add(1)
		go w.sweepStale(ctx)
	}
}

// Stop implements Worker. Queued analyses that never started are failed.
func (w *worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stopChan)
	w.mu.Unlock()

	w.log.Info("stopping analysis worker")
	w.wg.Wait()

	for {
		select {
		case job := <-w.jobQueue:
			job.events <- ErrorEvent(ErrWorkerStopped)
			close(job.events)
		default:
			w.log.Info("analysis worker stopped")
			return
		}
	}
}

// Submit implements Worker.
func (w *worker) Submit(req AnalysisRequest) (<-chan Event, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return nil, ErrWorkerStopped
	}

	job := analysisJob{req: req, events: make(chan Event, EventBuffer)}
	select {
	case w.jobQueue <- job:
		w.log.Debug("analysis enqueued", zap.String("resume_id", req.ResumeID.String()), zap.String("jd_id", req.JDID.String()))
		return job.events, nil
	default:
		return nil, ErrQueueFull
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker_id", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case job := <-w.jobQueue:
			w.run(ctx, log, job)
		}
	}
}

func (w *worker) run(ctx context.Context, log *zap.Logger, job analysisJob) {
	terminal := false
	defer close(job.events)
	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panicked", zap.Any("panic", r))
			if !terminal {
				job.events <- ErrorEvent(errors.New("internal error"))
			}
		}
	}()

	start := w.now()
	w.service.Run(ctx, job.req, EmitterFunc(func(e Event) {
		if terminal {
			return
		}
		terminal = e.Terminal()
		job.events <- e
	}))
	log.Info("analysis finished", zap.Duration("elapsed", w.now().Sub(start)))
}

// sweepStale marks analyses left running by a crashed or stopped process.
func (w *worker) sweepStale(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.SweepInterval)
	defer ticker.Stop()

	w.sweepOnce(ctx)
	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

func (w *worker) sweepOnce(ctx context.Context) {
	n, err := w.analyses.MarkStaleRunning(ctx, w.now().Add(-w.opts.StaleAfter), staleAnalysisReason)
	if err != nil {
		w.log.Warn("stale analysis sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("marked stale analyses as errored", zap.Int64("count", n))
	}
}
