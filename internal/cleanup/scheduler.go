package cleanup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Intervals struct {
	Slots  time.Duration
	Tokens time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{Slots: time.Hour, Tokens: 30 * time.Minute}
}

type Scheduler struct {
	cleanup   *CleanupService
	intervals Intervals
	log       *zap.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewScheduler(cleanup *CleanupService, intervals Intervals, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cleanup:   cleanup,
		intervals: intervals,
		log:       log,
		stopCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting cleanup scheduler",
		zap.Duration("slots_every", s.intervals.Slots),
		zap.Duration("tokens_every", s.intervals.Tokens))

	s.wg.Add(2)
	go s.loop(ctx, "slots", s.intervals.Slots, func(ctx context.Context) error {
		if err := s.cleanup.ClosePastSlots(ctx); err != nil {
			return err
		}
		return s.cleanup.ReconcileBookings(ctx)
	})
	go s.loop(ctx, "tokens", s.intervals.Tokens, func(ctx context.Context) error {
		if err := s.cleanup.CleanupSessions(ctx); err != nil {
			return err
		}
		return s.cleanup.CleanupResetTokens(ctx)
	})
}

// Stop signals every loop and waits for them to return. Safe to call twice.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("stopping cleanup scheduler")
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, job func(context.Context) error) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	if err := job(ctx); err != nil {
		s.log.Error("initial cleanup failed", zap.String("job", name), zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := job(ctx); err != nil {
				s.log.Error("cleanup failed", zap.String("job", name), zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("cleanup stopped", zap.String("job", name))
			return
		case <-ctx.Done():
			s.log.Info("cleanup cancelled", zap.String("job", name))
			return
		}
	}
}

func (s *Scheduler) RunOnceNow(ctx context.Context) error {
	return s.cleanup.RunFullCleanup(ctx)
}
