package conversation

import (
	"context"
	"time"

	"hof-chatbot-be/internal/pkg/logger"
)

// Sweeper periodically collects expired sessions from a Store. It is owned
// by the application lifecycle: Start launches it, Stop blocks until it has
// finished.
type Sweeper struct {
	store    Store
	logger   logger.ILogger
	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(store Store, log logger.ILogger, interval time.Duration, now func() time.Time) *Sweeper {
	if interval <= 0 {
		interval = SweepInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		store:    store,
		logger:   log,
		interval: interval,
		now:      now,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.store.CleanupExpired(ctx, s.now())
	if err != nil {
		s.logger.Error(logger.ModuleConversation, "session sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if removed > 0 {
		s.logger.Info(logger.ModuleConversation, "expired sessions removed", map[string]interface{}{
			"count": removed,
		})
	}
}
