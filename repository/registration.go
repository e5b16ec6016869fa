package repository

import (
	"context"

	"github.com/fastygo/volunteer/domain"
)

// RegistrationFilter is the predicate used by RegistrationRepository.Search.
type RegistrationFilter struct {
	UserID     string
	TaskID     string
	TaskIDs    []string
	Statuses   []domain.RegistrationStatus
	Pagination Pagination
}

// Matches evaluates the filter in memory.
func (f RegistrationFilter) Matches(reg *domain.TaskRegistration) bool {
	if reg == nil {
		return false
	}
	if f.UserID != "" && reg.UserID != f.UserID {
		return false
	}
	if f.TaskID != "" && reg.TaskID != f.TaskID {
		return false
	}
	if len(f.TaskIDs) > 0 {
		found := false
		for _, id := range f.TaskIDs {
			if id == reg.TaskID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if s == reg.Status {
				return true
			}
		}
		return false
	}
	return true
}

// RegistrationRepository persists task registrations. Listings are ordered by registration date, newest first.
type RegistrationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TaskRegistration, error)
	// Create fails with DuplicateRegistration when an active registration already exists for the pair.
	Create(ctx context.Context, reg *domain.TaskRegistration) (*domain.TaskRegistration, error)
	// Update writes reg if its Version still matches the stored one, then bumps Version.
	Update(ctx context.Context, reg *domain.TaskRegistration) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, page Pagination) (Page[domain.TaskRegistration], error)
	Search(ctx context.Context, filter RegistrationFilter) (Page[domain.TaskRegistration], error)
	ListByUser(ctx context.Context, userID string, page Pagination) (Page[domain.TaskRegistration], error)
	ListByTask(ctx context.Context, taskID string, page Pagination) (Page[domain.TaskRegistration], error)
	ListByStatus(ctx context.Context, status domain.RegistrationStatus, page Pagination) (Page[domain.TaskRegistration], error)
	// GetActiveByUserAndTask returns the single active registration of the pair.
	GetActiveByUserAndTask(ctx context.Context, userID, taskID string) (*domain.TaskRegistration, error)
	ExistsActive(ctx context.Context, userID, taskID string) (bool, error)
}

// Transactor runs fn inside one storage transaction. Repositories created from the
// same backend pick the transaction up from the context passed to fn.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
