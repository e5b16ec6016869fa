package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpiredTaskCloser completes tasks whose end date has passed.
type ExpiredTaskCloser interface {
	CloseExpired(ctx context.Context) (int, error)
}

// TaskCloser runs CloseExpired on a fixed schedule.
type TaskCloser struct {
	closer   ExpiredTaskCloser
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewTaskCloser(closer ExpiredTaskCloser, interval time.Duration, logger *zap.Logger) *TaskCloser {
	if interval < time.Second {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tc := &TaskCloser{
		closer:   closer,
		interval: interval,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = tc.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		tc.RunOnce(ctx)
	})
	return tc
}

// RunOnce closes expired tasks immediately and returns how many were closed.
func (tc *TaskCloser) RunOnce(ctx context.Context) int {
	closed, err := tc.closer.CloseExpired(ctx)
	if err != nil {
		tc.logger.Error("closing expired tasks failed", zap.Error(err))
		return closed
	}
	if closed > 0 {
		tc.logger.Info("expired tasks closed", zap.Int("count", closed))
	}
	return closed
}

func (tc *TaskCloser) Start() {
	if tc == nil || tc.cron == nil {
		return
	}
	tc.cron.Start()
	tc.logger.Info("task closer started", zap.Duration("interval", tc.interval))
}

func (tc *TaskCloser) Stop(ctx context.Context) {
	if tc == nil || tc.cron == nil {
		return
	}
	stopCtx := tc.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	tc.logger.Info("task closer stopped")
}
