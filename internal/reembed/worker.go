package reembed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker runs backfills for one or more models in the background. It wakes
// up on a fixed interval and whenever Trigger is called.
type Worker struct {
	reembedders []*Reembedder
	logger      *zap.Logger

	wake chan struct{}

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewWorker creates a worker over the given per-model reembedders.
func NewWorker(logger *zap.Logger, reembedders ...*Reembedder) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		reembedders: reembedders,
		logger:      logger.Named("reembed"),
		wake:        make(chan struct{}, 1),
	}
}

// Trigger requests a backfill pass without blocking. Requests made while a
// pass is pending collapse into one.
func (w *Worker) Trigger() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Start begins the worker goroutine. It stops when ctx is cancelled.
func (w *Worker) Start(ctx context.Context, interval time.Duration) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn("already running")
		return
	}
	w.running = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer func() {
			w.mu.Lock()
			w.running = false
			close(w.done)
			w.mu.Unlock()
		}()

		w.logger.Info("started", zap.Duration("interval", interval))

		w.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				w.logger.Info("context cancelled, stopping")
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			case <-w.wake:
				w.RunOnce(ctx)
			}
		}
	}()
}

// Stop waits for the worker goroutine to exit. Cancel the Start context first.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	done := w.done
	w.mu.Unlock()

	<-done
}

// RunOnce backfills every configured model once.
func (w *Worker) RunOnce(ctx context.Context) {
	for _, r := range w.reembedders {
		if ctx.Err() != nil {
			return
		}
		stats, err := r.ReembedAll(ctx, nil)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Error("backfill failed", zap.Error(err))
			}
			continue
		}
		if stats.Processed > 0 {
			r.logger.Info("backfilled shortcut embeddings",
				zap.Int64("processed", stats.Processed),
				zap.Int64("errors", stats.Errors),
				zap.Duration("duration", stats.Duration),
			)
		}
	}
}
