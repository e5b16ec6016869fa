package repository

import (
	"context"
	"time"

	"github.com/fastygo/volunteer/domain"
)

// FeaturedLimit caps the featured listing.
const FeaturedLimit = 10

// TaskFilter is the predicate used by TaskRepository.Search. Empty fields match everything.
type TaskFilter struct {
	OrganizationID string
	CreatedBy      string
	Category       domain.Category
	Statuses       []domain.TaskStatus
	Urgent         *bool
	Query          string
	EndsBefore     *time.Time
	Pagination     Pagination
}

// Matches evaluates the filter in memory; SQL stores translate it into a WHERE clause.
func (f TaskFilter) Matches(task *domain.VolunteerTask) bool {
	if task == nil {
		return false
	}
	if f.OrganizationID != "" && task.OrganizationID != f.OrganizationID {
		return false
	}
	if f.CreatedBy != "" && task.CreatedBy != f.CreatedBy {
		return false
	}
	if f.Category != "" && task.Category != f.Category {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, task.Status) {
		return false
	}
	if f.Urgent != nil && task.IsUrgent != *f.Urgent {
		return false
	}
	if f.EndsBefore != nil && !task.EndDate.Before(*f.EndsBefore) {
		return false
	}
	return task.MatchesText(f.Query)
}

func containsStatus(statuses []domain.TaskStatus, s domain.TaskStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TaskRepository persists volunteer tasks. Listings are ordered newest-first.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.VolunteerTask, error)
	Create(ctx context.Context, task *domain.VolunteerTask) (*domain.VolunteerTask, error)
	// Update writes task if its Version still matches the stored one, then bumps Version.
	// CurrentVolunteers is owned by the capacity methods and is never overwritten here.
	Update(ctx context.Context, task *domain.VolunteerTask) error
	// Delete removes a task that holds no reserved slots. An occupied task
	// yields ErrTaskHasRegistrations.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, page Pagination) (Page[domain.VolunteerTask], error)
	Search(ctx context.Context, filter TaskFilter) (Page[domain.VolunteerTask], error)
	ListByOrganization(ctx context.Context, organizationID string, page Pagination) (Page[domain.VolunteerTask], error)
	ListByCreator(ctx context.Context, userID string, page Pagination) (Page[domain.VolunteerTask], error)
	ListByCategory(ctx context.Context, category domain.Category, page Pagination) (Page[domain.VolunteerTask], error)
	ListActive(ctx context.Context, page Pagination) (Page[domain.VolunteerTask], error)
	TextSearch(ctx context.Context, query string, page Pagination) (Page[domain.VolunteerTask], error)
	Featured(ctx context.Context) ([]domain.VolunteerTask, error)

	// IncrementVolunteers atomically adds one volunteer only while the task is
	// Active and below capacity. It fails with TaskFull or TaskNotOpen otherwise.
	IncrementVolunteers(ctx context.Context, id string) (*domain.VolunteerTask, error)
	// DecrementVolunteers atomically removes one volunteer, floored at zero.
	DecrementVolunteers(ctx context.Context, id string) (*domain.VolunteerTask, error)
}
