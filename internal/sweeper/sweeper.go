// Package sweeper permanently removes soft-deleted spaces once their
// retention window has passed.
package sweeper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger deletes spaces that were soft-deleted before a cutoff.
type Purger interface {
	PurgeDeletedSpaces(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper manages automatic purging of deleted spaces.
type Sweeper struct {
	purger    Purger
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewSweeper creates a new Sweeper instance. Spaces stay restorable for
// retention after they are deleted.
func NewSweeper(purger Purger, retention time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		purger:    purger,
		retention: retention,
		logger:    logger.Named("sweeper"),
		now:       time.Now,
	}
}

// Start begins the sweeper goroutine that periodically purges deleted spaces.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("already running")
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer func() {
			s.mu.Lock()
			s.running = false
			close(s.done)
			s.mu.Unlock()
		}()

		s.logger.Info("started", zap.Duration("interval", interval), zap.Duration("retention", s.retention))

		// Run initial sweep
		s.runSweep(ctx)

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("context cancelled, stopping")
				return
			case <-ticker.C:
				s.runSweep(ctx)
			}
		}
	}()
}

// Stop waits for the sweeper to complete. Cancel the Start context first.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("stopped")
}

func (s *Sweeper) runSweep(ctx context.Context) {
	purged, err := s.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("purge deleted spaces", zap.Error(err))
		}
		return
	}
	if purged > 0 {
		s.logger.Info("purged deleted spaces", zap.Int64("count", purged))
	}
}

// PurgeExpired removes spaces deleted more than the retention window ago.
func (s *Sweeper) PurgeExpired(ctx context.Context) (int64, error) {
	return s.purger.PurgeDeletedSpaces(ctx, s.now().Add(-s.retention))
}
