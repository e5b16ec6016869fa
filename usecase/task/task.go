package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/pkg/validation"
	"github.com/fastygo/volunteer/repository"
	"github.com/fastygo/volunteer/usecase"
)

const maxConflictRetries = 3

// UseCase is the task lifecycle engine: status transitions, capacity accounting and task CRUD.
type UseCase struct {
	tasks         repository.TaskRepository
	registrations repository.RegistrationRepository
	now           usecase.Clock
	logger        *zap.Logger
}

type Option func(*UseCase)

// WithClock overrides the time source.
func WithClock(clock usecase.Clock) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.now = clock
		}
	}
}

func New(tasks repository.TaskRepository, registrations repository.RegistrationRepository, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:         tasks,
		registrations: registrations,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.VolunteerTask, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	return task, domain.Internal(err)
}

// CreateTask stores a new Draft task owned by the actor's organization.
func (uc *UseCase) CreateTask(ctx context.Context, actor domain.Identity, task *domain.VolunteerTask) (*domain.VolunteerTask, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.OrganizationID == "" {
		task.OrganizationID = actor.OrganizationID
	}
	if !actor.CanManage(task.OrganizationID) {
		return nil, domain.ErrForbidden
	}

	task.ID = ""
	task.Status = domain.TaskStatusDraft
	task.CurrentVolunteers = 0
	task.CreatedBy = actor.UserID
	task.Version = 0
	if err := validation.Struct(task); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, domain.Internal(err)
	}
	uc.logger.Info("task created", zap.String("task_id", created.ID), zap.String("organization_id", created.OrganizationID))
	return created, nil
}

// UpdateTask rewrites the descriptive fields of a task. Status and occupancy are left untouched.
func (uc *UseCase) UpdateTask(ctx context.Context, actor domain.Identity, changes *domain.VolunteerTask) (*domain.VolunteerTask, error) {
	if changes == nil {
		return nil, domain.ErrInvalidPayload
	}
	current, err := uc.tasks.GetByID(ctx, changes.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if !actor.CanManage(current.OrganizationID) {
		return nil, domain.ErrForbidden
	}
	if current.Status.IsTerminal() {
		return nil, domain.NewError(domain.ErrCodeInvalidTransition, "task is closed for edits")
	}

	current.Title = changes.Title
	current.Description = changes.Description
	current.StartDate = changes.StartDate
	current.EndDate = changes.EndDate
	current.Location = changes.Location
	current.MaxVolunteers = changes.MaxVolunteers
	current.Category = changes.Category
	current.Requirements = changes.Requirements
	current.Skills = changes.Skills
	current.Tags = changes.Tags
	current.IsUrgent = changes.IsUrgent
	current.ApplicationDeadline = changes.ApplicationDeadline
	if changes.Version != 0 {
		current.Version = changes.Version
	}

	if current.MaxVolunteers < current.CurrentVolunteers {
		return nil, domain.ErrCapacityBelowOccupancy
	}
	if err := validation.Struct(current); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, current); err != nil {
		return nil, domain.Internal(err)
	}
	return current, nil
}

// DeleteTask removes a task that has no active registrations. The store refuses
// the delete while any slot is reserved, which covers a registration landing
// after the check below.
func (uc *UseCase) DeleteTask(ctx context.Context, actor domain.Identity, id string) error {
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return domain.Internal(err)
	}
	if !actor.CanManage(current.OrganizationID) {
		return domain.ErrForbidden
	}

	active, err := uc.registrations.Search(ctx, repository.RegistrationFilter{
		TaskID:     id,
		Statuses:   domain.ActiveRegistrationStatuses,
		Pagination: repository.Pagination{Page: 1, PageSize: 1},
	})
	if err != nil {
		return domain.Internal(err)
	}
	if active.Total > 0 {
		return domain.ErrTaskHasRegistrations
	}
	return domain.Internal(uc.tasks.Delete(ctx, id))
}

// Publish moves a Draft task to Active.
func (uc *UseCase) Publish(ctx context.Context, actor domain.Identity, id string) (*domain.VolunteerTask, error) {
	return uc.transition(ctx, &actor, id, domain.TaskStatusActive, domain.TaskStatusDraft)
}

// Pause stops an Active task from accepting applications.
func (uc *UseCase) Pause(ctx context.Context, actor domain.Identity, id string) (*domain.VolunteerTask, error) {
	return uc.transition(ctx, &actor, id, domain.TaskStatusPaused, domain.TaskStatusActive)
}

// Resume re-activates a Paused task.
func (uc *UseCase) Resume(ctx context.Context, actor domain.Identity, id string) (*domain.VolunteerTask, error) {
	return uc.transition(ctx, &actor, id, domain.TaskStatusActive, domain.TaskStatusPaused)
}

// Complete closes an Active or Paused task manually.
func (uc *UseCase) Complete(ctx context.Context, actor domain.Identity, id string) (*domain.VolunteerTask, error) {
	return uc.transition(ctx, &actor, id, domain.TaskStatusCompleted)
}

// Cancel terminates any non-terminal task.
func (uc *UseCase) Cancel(ctx context.Context, actor domain.Identity, id string) (*domain.VolunteerTask, error) {
	return uc.transition(ctx, &actor, id, domain.TaskStatusCancelled)
}

// ReserveSlot takes one slot of an Active task. The storage layer performs the
// check and the increment as one atomic step.
func (uc *UseCase) ReserveSlot(ctx context.Context, taskID string) (*domain.VolunteerTask, error) {
	task, err := uc.tasks.IncrementVolunteers(ctx, taskID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	uc.logger.Debug("slot reserved", zap.String("task_id", taskID), zap.Int("current_volunteers", task.CurrentVolunteers))
	return task, nil
}

// ReleaseSlot returns one slot to the pool; at zero it is a no-op.
func (uc *UseCase) ReleaseSlot(ctx context.Context, taskID string) (*domain.VolunteerTask, error) {
	task, err := uc.tasks.DecrementVolunteers(ctx, taskID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	uc.logger.Debug("slot released", zap.String("task_id", taskID), zap.Int("current_volunteers", task.CurrentVolunteers))
	return task, nil
}

// IsAcceptingApplications reports whether task is Active, has room and is inside its application window.
func (uc *UseCase) IsAcceptingApplications(task *domain.VolunteerTask, now time.Time) bool {
	return task.IsAcceptingApplications(now)
}

// CloseExpired completes every Active or Paused task whose end date has passed.
func (uc *UseCase) CloseExpired(ctx context.Context) (int, error) {
	now := uc.now()
	expired, err := uc.tasks.Search(ctx, repository.TaskFilter{
		Statuses:   []domain.TaskStatus{domain.TaskStatusActive, domain.TaskStatusPaused},
		EndsBefore: &now,
	})
	if err != nil {
		return 0, domain.Internal(err)
	}

	closed := 0
	for _, task := range expired.Items {
		if _, err := uc.transition(ctx, nil, task.ID, domain.TaskStatusCompleted); err != nil {
			uc.logger.Warn("failed to close expired task", zap.String("task_id", task.ID), zap.Error(err))
			continue
		}
		closed++
	}
	return closed, nil
}

// transition applies a status change, retrying when a concurrent edit bumps the version.
// A nil actor skips authorization; it is used by system jobs.
func (uc *UseCase) transition(ctx context.Context, actor *domain.Identity, id string, target domain.TaskStatus, from ...domain.TaskStatus) (*domain.VolunteerTask, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		task, err := uc.tasks.GetByID(ctx, id)
		if err != nil {
			return nil, domain.Internal(err)
		}
		if actor != nil && !actor.CanManage(task.OrganizationID) {
			return nil, domain.ErrForbidden
		}
		if len(from) > 0 && !statusIn(task.Status, from) {
			return nil, domain.InvalidTransition("task", task.Status, target)
		}

		previous := task.Status
		if err := task.TransitionTo(target); err != nil {
			return nil, err
		}

		err = uc.tasks.Update(ctx, task)
		if err == nil {
			uc.logger.Info("task status changed",
				zap.String("task_id", task.ID),
				zap.String("from", string(previous)),
				zap.String("to", string(target)))
			return task, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeConcurrencyConflict) {
			return nil, domain.Internal(err)
		}
		lastErr = err
	}
	return nil, lastErr
}

func statusIn(s domain.TaskStatus, set []domain.TaskStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
