package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/internal/infrastructure/outbox"
	"github.com/fastygo/volunteer/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Publisher hands a notification to the broker.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Outbox is the durable queue used while the broker is unreachable.
type Outbox interface {
	Enqueue(item outbox.Item) error
	GetBatch(limit int) ([]outbox.Item, error)
	Remove(item outbox.Item) error
	Requeue(item outbox.Item, cause error) error
	Size() (int, error)
}

// DispatcherConfig controls how frequently the outbox is drained.
type DispatcherConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// NotificationDispatcher publishes registration events and parks them in the
// outbox when the broker is down. A cron job drains the outbox once it is back.
type NotificationDispatcher struct {
	publisher Publisher
	store     Outbox
	monitor   ConnectionHealth
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       DispatcherConfig
}

func NewNotificationDispatcher(
	publisher Publisher,
	store Outbox,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg DispatcherConfig,
) *NotificationDispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &NotificationDispatcher{
		publisher: publisher,
		store:     store,
		monitor:   monitor,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := d.Drain(ctx); err != nil {
			d.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return d
}

// Start launches the cron scheduler.
func (d *NotificationDispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("notification dispatcher started")
}

// Stop gracefully stops the scheduler.
func (d *NotificationDispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.logger.Info("notification dispatcher stopped")
}

// Notify publishes n right away when the broker is reachable and falls back to the outbox.
// Without a publisher the event is dropped.
func (d *NotificationDispatcher) Notify(ctx context.Context, n domain.Notification) error {
	if d == nil {
		return errors.New("notification dispatcher not configured")
	}

	if d.publisher == nil {
		// nothing could ever drain a queued item
		d.logger.Warn("notification dropped: no broker configured",
			zap.String("event", n.Name),
			zap.String("registration_id", n.RegistrationID))
		return nil
	}

	if d.monitor == nil || d.monitor.IsOnline() {
		err := d.publisher.Publish(ctx, n)
		if err == nil {
			return nil
		}
		d.logger.Warn("immediate publish failed, queueing", zap.String("event", n.Name), zap.Error(err))
	}

	if d.store == nil {
		return errors.New("notification dropped: no outbox configured")
	}
	item, err := outbox.NewItem(n)
	if err != nil {
		return err
	}
	return d.store.Enqueue(item)
}

// Drain publishes queued notifications and returns how many were delivered.
func (d *NotificationDispatcher) Drain(ctx context.Context) (int, error) {
	if d == nil || d.store == nil || d.publisher == nil {
		return 0, nil
	}
	if d.monitor != nil && !d.monitor.IsOnline() {
		d.logger.Debug("skipping outbox drain (offline)")
		return 0, nil
	}

	items, err := d.store.GetBatch(d.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if err := d.publishItem(ctx, item); err != nil {
			d.logger.Error("failed to publish queued notification",
				zap.String("item_id", item.ID),
				zap.String("event", item.Event),
				zap.Error(err))

			if item.Attempts+1 >= d.cfg.MaxRetries {
				d.logger.Warn("dropping notification (max retries reached)", zap.String("item_id", item.ID))
				if err := d.store.Remove(item); err != nil {
					d.logger.Warn("failed to remove outbox item", zap.Error(err))
				}
				continue
			}
			if err := d.store.Requeue(item, err); err != nil {
				d.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := d.store.Remove(item); err != nil {
			d.logger.Warn("failed to purge delivered outbox item", zap.Error(err))
		}
		delivered++
	}
	return delivered, nil
}

// Size returns the number of queued notifications.
func (d *NotificationDispatcher) Size() int {
	if d == nil || d.store == nil {
		return 0
	}
	size, err := d.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (d *NotificationDispatcher) publishItem(ctx context.Context, item outbox.Item) error {
	n, err := item.Notification()
	if err != nil {
		return err
	}
	return d.publisher.Publish(ctx, n)
}

var _ usecase.Notifier = (*NotificationDispatcher)(nil)
