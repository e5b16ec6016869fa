package monitor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/internal/infrastructure/outbox"
)

func TestRefreshReportsDisabledDependencies(t *testing.T) {
	m := New(nil, nil, nil, time.Second, nil)

	assert.True(t, m.GetStatus().LastCheck.IsZero())

	status := m.Refresh()
	assert.Equal(t, StateDisabled, status.PostgreSQL)
	assert.Equal(t, StateDisabled, status.Redis)
	assert.Equal(t, StateDisabled, status.Outbox)
	assert.True(t, status.Healthy())
	assert.False(t, m.IsOnline(), "no broker means offline")
	assert.Equal(t, status, m.GetStatus())
}

func TestRefreshCountsOutbox(t *testing.T) {
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	it, err := outbox.NewItem(domain.Notification{Name: domain.EventRegistrationCreated})
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(it))

	m := New(nil, nil, store, time.Second, nil)
	status := m.Refresh()
	assert.Equal(t, StateUp, status.Outbox)
	assert.Equal(t, 1, status.OutboxSize)
}

func TestHealthy(t *testing.T) {
	assert.False(t, Status{PostgreSQL: StateUp, Redis: StateDown, Outbox: StateDisabled}.Healthy())
	assert.True(t, Status{PostgreSQL: StateUp, Redis: StateDisabled, Outbox: StateUp}.Healthy())
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(nil, nil, nil, 10*time.Millisecond, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
