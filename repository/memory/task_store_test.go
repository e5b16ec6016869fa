package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository"
)

func newTask(status domain.TaskStatus, capacity int) *domain.VolunteerTask {
	start := time.Now().Add(24 * time.Hour)
	return &domain.VolunteerTask{
		Title:          "Food bank shift",
		StartDate:      start,
		EndDate:        start.Add(4 * time.Hour),
		MaxVolunteers:  capacity,
		Status:         status,
		Category:       domain.CategoryCommunity,
		OrganizationID: "org-1",
		CreatedBy:      "user-1",
	}
}

func TestTaskStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()

	created, err := store.Create(ctx, newTask(domain.TaskStatusDraft, 3))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	got.Title = "mutated"
	again, _ := store.GetByID(ctx, created.ID)
	assert.Equal(t, "Food bank shift", again.Title, "stored copy must not alias returned value")

	_, err = store.GetByID(ctx, "missing")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestTaskStoreUpdateVersioning(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()
	created, err := store.Create(ctx, newTask(domain.TaskStatusActive, 3))
	require.NoError(t, err)

	first, _ := store.GetByID(ctx, created.ID)
	second, _ := store.GetByID(ctx, created.ID)

	first.Title = "Morning shift"
	require.NoError(t, store.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Title = "Evening shift"
	err = store.Update(ctx, second)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConcurrencyConflict))
}

func TestTaskStoreUpdateKeepsOccupancy(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()
	created, _ := store.Create(ctx, newTask(domain.TaskStatusActive, 3))

	stale, _ := store.GetByID(ctx, created.ID)
	_, err := store.IncrementVolunteers(ctx, created.ID)
	require.NoError(t, err)
	_, err = store.IncrementVolunteers(ctx, created.ID)
	require.NoError(t, err)

	stale.Title = "Renamed"
	require.NoError(t, store.Update(ctx, stale), "capacity changes do not bump the version")

	got, _ := store.GetByID(ctx, created.ID)
	assert.Equal(t, 2, got.CurrentVolunteers)
	assert.Equal(t, "Renamed", got.Title)

	got.MaxVolunteers = 1
	err = store.Update(ctx, got)
	assert.Equal(t, domain.ErrCapacityBelowOccupancy, err)
}

func TestTaskStoreIncrement(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()

	active, _ := store.Create(ctx, newTask(domain.TaskStatusActive, 1))
	task, err := store.IncrementVolunteers(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, task.CurrentVolunteers)

	_, err = store.IncrementVolunteers(ctx, active.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTaskFull))

	paused, _ := store.Create(ctx, newTask(domain.TaskStatusPaused, 1))
	_, err = store.IncrementVolunteers(ctx, paused.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTaskNotOpen))

	_, err = store.IncrementVolunteers(ctx, "missing")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestTaskStoreDecrementFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()
	created, _ := store.Create(ctx, newTask(domain.TaskStatusActive, 2))

	_, err := store.IncrementVolunteers(ctx, created.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		task, err := store.DecrementVolunteers(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, task.CurrentVolunteers)
	}
}

func TestTaskStoreConcurrentIncrement(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()
	const capacity, callers = 5, 50
	created, _ := store.Create(ctx, newTask(domain.TaskStatusActive, capacity))

	var ok, full int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementVolunteers(ctx, created.ID); err == nil {
				atomic.AddInt32(&ok, 1)
			} else if domain.IsDomainError(err, domain.ErrCodeTaskFull) {
				atomic.AddInt32(&full, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(capacity), ok)
	assert.Equal(t, int32(callers-capacity), full)
	got, _ := store.GetByID(ctx, created.ID)
	assert.Equal(t, capacity, got.CurrentVolunteers)
}

func TestTaskStoreQueries(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 12; i++ {
		task := newTask(domain.TaskStatusActive, 5)
		task.IsUrgent = true
		task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		task.Title = "Urgent"
		_, err := store.Create(ctx, task)
		require.NoError(t, err)
	}
	draft := newTask(domain.TaskStatusDraft, 5)
	draft.IsUrgent = true
	draft.Category = domain.CategoryAnimals
	draft.OrganizationID = "org-2"
	draft.Tags = []string{"Dogs"}
	_, err := store.Create(ctx, draft)
	require.NoError(t, err)

	featured, err := store.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, repository.FeaturedLimit)
	for i := 1; i < len(featured); i++ {
		assert.False(t, featured[i].CreatedAt.After(featured[i-1].CreatedAt), "featured must be newest-first")
	}

	active, err := store.ListActive(ctx, repository.Pagination{Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, active.Total)
	assert.Len(t, active.Items, 5)

	byOrg, err := store.ListByOrganization(ctx, "org-2", repository.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, byOrg.Total)

	byCategory, err := store.ListByCategory(ctx, domain.CategoryAnimals, repository.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, byCategory.Total)

	text, err := store.TextSearch(ctx, "dogs", repository.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, text.Total)

	_, err = store.ListActive(ctx, repository.Pagination{Page: 0, PageSize: 10})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidationFailed))
}

func TestTaskStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore()
	created, _ := store.Create(ctx, newTask(domain.TaskStatusDraft, 1))

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.True(t, domain.IsDomainError(store.Delete(ctx, created.ID), domain.ErrCodeNotFound))

	occupied, _ := store.Create(ctx, newTask(domain.TaskStatusActive, 2))
	_, err := store.IncrementVolunteers(ctx, occupied.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ErrTaskHasRegistrations, store.Delete(ctx, occupied.ID))

	_, err = store.DecrementVolunteers(ctx, occupied.ID)
	require.NoError(t, err)
	assert.NoError(t, store.Delete(ctx, occupied.ID))
}
