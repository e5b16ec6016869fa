package usecase

import (
	"context"
	"time"

	"github.com/fastygo/volunteer/domain"
)

// Notifier delivers registration events. Callers never block correctness on it.
type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification) error
}

// Clock lets engines read the current time; tests pin it.
type Clock func() time.Time
