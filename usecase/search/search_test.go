package search

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository"
	"github.com/fastygo/volunteer/repository/memory"
)

func coords(lat, lng float64) domain.Location {
	return domain.Location{City: "NYC", Country: "US", Latitude: &lat, Longitude: &lng}
}

func seed(t *testing.T) *UseCase {
	t.Helper()
	store := memory.NewTaskStore()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tasks := []domain.VolunteerTask{
		{Title: "Food bank shift", Description: "Sort donations", Category: domain.CategoryCommunity,
			Status: domain.TaskStatusActive, Location: coords(40.7128, -74.0060), OrganizationID: "org-1", CreatedBy: "alice"},
		{Title: "Park cleanup", Tags: []string{"outdoors"}, Category: domain.CategoryEnvironment, IsUrgent: true,
			Status: domain.TaskStatusActive, Location: coords(40.7589, -73.9851), OrganizationID: "org-1", CreatedBy: "alice"},
		{Title: "Far away trail work", Category: domain.CategoryEnvironment,
			Status: domain.TaskStatusActive, Location: coords(41.8, -74.5), OrganizationID: "org-2", CreatedBy: "bob"},
		{Title: "Paused food drive", Category: domain.CategoryCommunity,
			Status: domain.TaskStatusPaused, Location: coords(40.7130, -74.0061), OrganizationID: "org-2", CreatedBy: "bob"},
		{Title: "Remote tutoring", Category: domain.CategoryEducation,
			Status: domain.TaskStatusActive, OrganizationID: "org-2", CreatedBy: "bob"},
	}
	for i := range tasks {
		tasks[i].MaxVolunteers = 5
		tasks[i].StartDate = base.AddDate(0, 1, 0)
		tasks[i].EndDate = base.AddDate(0, 1, 1)
		tasks[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := store.Create(context.Background(), &tasks[i])
		require.NoError(t, err)
	}
	return New(store, nil)
}

func titles(tasks []domain.VolunteerTask) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestNearby(t *testing.T) {
	uc := seed(t)
	ctx := context.Background()

	found, err := uc.Nearby(ctx, 40.7128, -74.0060, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Park cleanup", "Food bank shift"}, titles(found),
		"paused tasks, tasks without coordinates and far tasks are excluded")

	found, err = uc.Nearby(ctx, 40.7128, -74.0060, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food bank shift"}, titles(found), "zero radius keeps exact matches")

	found, err = uc.Nearby(ctx, 0, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestNearbyRejectsBadInput(t *testing.T) {
	uc := seed(t)

	tests := []struct {
		name          string
		lat, lng, rad float64
	}{
		{"latitude too high", 91, 0, 1},
		{"latitude too low", -90.5, 0, 1},
		{"longitude out of range", 0, 181, 1},
		{"negative radius", 0, 0, -1},
		{"radius beyond half the globe", 0, 0, MaxRadiusKm + 1},
		{"nan latitude", math.NaN(), 0, 1},
		{"nan radius", 0, 0, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Nearby(context.Background(), tt.lat, tt.lng, tt.rad)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidationFailed))
		})
	}
}

func TestTextSearch(t *testing.T) {
	uc := seed(t)
	ctx := context.Background()
	page := repository.Pagination{Page: 1, PageSize: 10}

	result, err := uc.TextSearch(ctx, "FOOD", page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food bank shift"}, titles(result.Items), "only active tasks are searched")

	result, err = uc.TextSearch(ctx, "outdoors", page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Park cleanup"}, titles(result.Items))

	result, err = uc.TextSearch(ctx, "   ", page)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total, "blank query browses every active task")

	_, err = uc.TextSearch(ctx, "food", repository.Pagination{Page: 0, PageSize: 10})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidationFailed))
}

func TestCategoryAndOwnerListings(t *testing.T) {
	uc := seed(t)
	ctx := context.Background()
	page := repository.Pagination{Page: 1, PageSize: 10}

	result, err := uc.ByCategory(ctx, "environment", page)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Park cleanup", "Far away trail work"}, titles(result.Items))

	_, err = uc.ByCategory(ctx, "knitting", page)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidationFailed))

	result, err = uc.ByOrganization(ctx, "org-2", page)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)

	result, err = uc.ByCreator(ctx, "alice", page)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	featured, err := uc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Park cleanup"}, titles(featured))
}
