package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository"
)

func pending(userID, taskID string) *domain.TaskRegistration {
	return &domain.TaskRegistration{UserID: userID, TaskID: taskID, Status: domain.RegistrationPending}
}

func TestRegistrationStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewRegistrationStore()

	first, err := store.Create(ctx, pending("u1", "t1"))
	require.NoError(t, err)

	_, err = store.Create(ctx, pending("u1", "t1"))
	assert.Equal(t, domain.ErrDuplicateRegistration, err)

	_, err = store.Create(ctx, pending("u1", "t2"))
	assert.NoError(t, err, "a different task is a different pair")

	first.Status = domain.RegistrationCancelled
	require.NoError(t, store.Update(ctx, first))

	exists, err := store.ExistsActive(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Create(ctx, pending("u1", "t1"))
	assert.NoError(t, err, "re-registration after cancel is allowed")
}

func TestRegistrationStoreActiveLookup(t *testing.T) {
	ctx := context.Background()
	store := NewRegistrationStore()

	_, err := store.GetActiveByUserAndTask(ctx, "u1", "t1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	reg, err := store.Create(ctx, pending("u1", "t1"))
	require.NoError(t, err)

	got, err := store.GetActiveByUserAndTask(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)
}

func TestRegistrationStoreVersionConflict(t *testing.T) {
	ctx := context.Background()
	store := NewRegistrationStore()
	reg, _ := store.Create(ctx, pending("u1", "t1"))

	a, _ := store.GetByID(ctx, reg.ID)
	b, _ := store.GetByID(ctx, reg.ID)

	a.Status = domain.RegistrationApproved
	require.NoError(t, store.Update(ctx, a))

	b.Status = domain.RegistrationRejected
	assert.True(t, domain.IsDomainError(store.Update(ctx, b), domain.ErrCodeConcurrencyConflict))
}

func TestRegistrationStoreListings(t *testing.T) {
	ctx := context.Background()
	store := NewRegistrationStore()
	for _, pair := range [][2]string{{"u1", "t1"}, {"u1", "t2"}, {"u2", "t1"}} {
		_, err := store.Create(ctx, pending(pair[0], pair[1]))
		require.NoError(t, err)
	}
	page := repository.Pagination{Page: 1, PageSize: 10}

	byUser, err := store.ListByUser(ctx, "u1", page)
	require.NoError(t, err)
	assert.Equal(t, 2, byUser.Total)

	byTask, err := store.ListByTask(ctx, "t1", page)
	require.NoError(t, err)
	assert.Equal(t, 2, byTask.Total)

	byStatus, err := store.ListByStatus(ctx, domain.RegistrationPending, page)
	require.NoError(t, err)
	assert.Equal(t, 3, byStatus.Total)

	filtered, err := store.Search(ctx, repository.RegistrationFilter{TaskIDs: []string{"t2"}})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Total)
}
