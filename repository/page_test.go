package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/volunteer/domain"
)

func TestPaginationValidate(t *testing.T) {
	assert.NoError(t, Pagination{Page: 1, PageSize: 10}.Validate())
	assert.True(t, domain.IsDomainError(Pagination{Page: 0, PageSize: 10}.Validate(), domain.ErrCodeValidationFailed))
	assert.True(t, domain.IsDomainError(Pagination{Page: 1, PageSize: 0}.Validate(), domain.ErrCodeValidationFailed))
	assert.True(t, Pagination{}.Unpaged())
}

func TestPaginationLimitOffset(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 20}
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 40, p.Offset())

	big := Pagination{Page: 2, PageSize: 1000}
	assert.Equal(t, MaxPageSize, big.Limit())
	assert.Equal(t, MaxPageSize, big.Offset())
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	page := Slice(all, Pagination{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, 5, page.Total)

	last := Slice(all, Pagination{Page: 3, PageSize: 2})
	assert.Equal(t, []int{5}, last.Items)

	beyond := Slice(all, Pagination{Page: 9, PageSize: 2})
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
	assert.Equal(t, 5, beyond.Total)

	everything := Slice(all, Pagination{})
	assert.Equal(t, all, everything.Items)
}

func TestTaskFilterMatches(t *testing.T) {
	urgent := true
	task := &domain.VolunteerTask{
		OrganizationID: "org-1",
		Category:       domain.CategoryHealth,
		Status:         domain.TaskStatusActive,
		IsUrgent:       true,
		Title:          "Blood drive",
	}

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{OrganizationID: "org-1", Urgent: &urgent, Query: "blood"}.Matches(task))
	assert.False(t, TaskFilter{Category: domain.CategoryAnimals}.Matches(task))
	assert.False(t, TaskFilter{Statuses: []domain.TaskStatus{domain.TaskStatusDraft}}.Matches(task))
	assert.False(t, TaskFilter{}.Matches(nil))
}
