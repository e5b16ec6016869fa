package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string

	m.Register("postgres", func(context.Context) error {
		order = append(order, "postgres")
		return nil
	})
	m.RegisterCloser("outbox", func() error {
		order = append(order, "outbox")
		return errors.New("file locked")
	})
	m.RegisterStopper("task_closer", func(ctx context.Context) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		order = append(order, "task_closer")
	})
	m.Register("ignored", nil)

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file locked")
	assert.Equal(t, []string{"task_closer", "outbox", "postgres"}, order, "a failing hook does not stop the rest")

	assert.Equal(t, err, m.Shutdown(context.Background()))
	assert.Len(t, order, 3, "hooks run once")
}

func TestSignalContextStop(t *testing.T) {
	m := New(0, nil)
	ctx, stop := m.SignalContext(context.Background())
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}
