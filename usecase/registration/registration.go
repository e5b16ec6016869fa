package registration

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/pkg/validation"
	"github.com/fastygo/volunteer/repository"
	"github.com/fastygo/volunteer/usecase"
)

const (
	notifyTimeout   = 5 * time.Second
	releaseAttempts = 3
)

// SlotKeeper is the part of the task lifecycle engine the workflow depends on.
type SlotKeeper interface {
	ReserveSlot(ctx context.Context, taskID string) (*domain.VolunteerTask, error)
	ReleaseSlot(ctx context.Context, taskID string) (*domain.VolunteerTask, error)
}

// UseCase is the registration workflow engine.
type UseCase struct {
	tasks         repository.TaskRepository
	registrations repository.RegistrationRepository
	slots         SlotKeeper
	tx            repository.Transactor
	notifier      usecase.Notifier
	now           usecase.Clock
	logger        *zap.Logger

	releaseBackoff time.Duration
}

type Option func(*UseCase)

// WithTransactor runs paired writes inside one storage transaction instead of compensating.
func WithTransactor(tx repository.Transactor) Option {
	return func(uc *UseCase) { uc.tx = tx }
}

// WithNotifier enables best-effort delivery of registration events.
func WithNotifier(n usecase.Notifier) Option {
	return func(uc *UseCase) { uc.notifier = n }
}

// WithClock overrides the time source.
func WithClock(clock usecase.Clock) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.now = clock
		}
	}
}

func New(
	tasks repository.TaskRepository,
	registrations repository.RegistrationRepository,
	slots SlotKeeper,
	logger *zap.Logger,
	opts ...Option,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:         tasks,
		registrations: registrations,
		slots:         slots,
		now:           time.Now,
		logger:        logger,

		releaseBackoff: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Register opens a Pending registration and reserves a slot for it as one unit.
func (uc *UseCase) Register(ctx context.Context, taskID, userID, message string) (*domain.TaskRegistration, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewError(domain.ErrCodeValidationFailed, "user id is required")
	}

	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, domain.Internal(err)
	}

	exists, err := uc.registrations.ExistsActive(ctx, userID, taskID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if exists {
		return nil, domain.ErrDuplicateRegistration
	}

	now := uc.now()
	// capacity is left to ReserveSlot, so a full Active task inside its window
	// reports TaskFull for sequential and racing callers alike
	if task.Status != domain.TaskStatusActive || !task.WithinApplicationWindow(now) {
		return nil, domain.ErrApplicationClosed
	}

	reg := &domain.TaskRegistration{
		UserID:           userID,
		TaskID:           taskID,
		RegistrationDate: now,
		Status:           domain.RegistrationPending,
		Message:          strings.TrimSpace(message),
	}
	if err := validation.Struct(reg); err != nil {
		return nil, err
	}

	err = uc.pair(ctx,
		func(ctx context.Context) error {
			_, err := uc.slots.ReserveSlot(ctx, taskID)
			return err
		},
		func(ctx context.Context) error {
			_, err := uc.slots.ReleaseSlot(ctx, taskID)
			return err
		},
		func(ctx context.Context) error {
			_, err := uc.registrations.Create(ctx, reg)
			return err
		},
	)
	if err != nil {
		return nil, domain.Internal(err)
	}

	uc.logger.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("task_id", taskID),
		zap.String("user_id", userID))
	uc.notify(ctx, domain.EventRegistrationCreated, reg, userID)
	return reg, nil
}

// Unregister cancels the caller's Pending or Approved registration and frees its slot.
func (uc *UseCase) Unregister(ctx context.Context, taskID, userID string) (*domain.TaskRegistration, error) {
	reg, err := uc.registrations.GetActiveByUserAndTask(ctx, userID, taskID)
	if err != nil {
		return nil, domain.Internal(err)
	}

	if err := uc.releasingTransition(ctx, reg, domain.RegistrationCancelled, func(*domain.TaskRegistration) {}); err != nil {
		return nil, err
	}

	uc.logger.Info("registration cancelled", zap.String("registration_id", reg.ID), zap.String("task_id", taskID))
	uc.notify(ctx, domain.EventRegistrationCancelled, reg, userID)
	return reg, nil
}

// Approve accepts a Pending registration. Occupancy does not change.
func (uc *UseCase) Approve(ctx context.Context, registrationID, reviewerID string) (*domain.TaskRegistration, error) {
	reg, err := uc.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if err := reg.TransitionTo(domain.RegistrationApproved); err != nil {
		return nil, err
	}
	now := uc.now()
	reg.ReviewedBy = reviewerID
	reg.ReviewedAt = &now

	if err := uc.registrations.Update(ctx, reg); err != nil {
		return nil, domain.Internal(err)
	}

	uc.logger.Info("registration approved", zap.String("registration_id", reg.ID), zap.String("reviewer_id", reviewerID))
	uc.notify(ctx, domain.EventRegistrationApproved, reg, reviewerID)
	return reg, nil
}

// Reject turns down a Pending registration, records the reason and returns its slot.
func (uc *UseCase) Reject(ctx context.Context, registrationID, reviewerID, reason string) (*domain.TaskRegistration, error) {
	reg, err := uc.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, domain.Internal(err)
	}

	now := uc.now()
	err = uc.releasingTransition(ctx, reg, domain.RegistrationRejected, func(r *domain.TaskRegistration) {
		r.ReviewedBy = reviewerID
		r.ReviewedAt = &now
		r.Notes = strings.TrimSpace(reason)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("registration rejected", zap.String("registration_id", reg.ID), zap.String("reviewer_id", reviewerID))
	uc.notify(ctx, domain.EventRegistrationRejected, reg, reviewerID)
	return reg, nil
}

// Complete marks an Approved registration as served, with optional rating and feedback.
func (uc *UseCase) Complete(ctx context.Context, registrationID string, rating *int, feedback string) (*domain.TaskRegistration, error) {
	reg, err := uc.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if err := reg.TransitionTo(domain.RegistrationCompleted); err != nil {
		return nil, err
	}
	now := uc.now()
	reg.CompletedAt = &now
	reg.Rating = rating
	reg.Feedback = strings.TrimSpace(feedback)
	if err := validation.Struct(reg); err != nil {
		return nil, err
	}

	if err := uc.registrations.Update(ctx, reg); err != nil {
		return nil, domain.Internal(err)
	}

	uc.logger.Info("registration completed", zap.String("registration_id", reg.ID))
	uc.notify(ctx, domain.EventRegistrationCompleted, reg, "")
	return reg, nil
}

// ListPending returns every Pending registration on tasks owned by organizationID.
func (uc *UseCase) ListPending(ctx context.Context, organizationID string) ([]domain.TaskRegistration, error) {
	owned, err := uc.tasks.Search(ctx, repository.TaskFilter{OrganizationID: organizationID})
	if err != nil {
		return nil, domain.Internal(err)
	}
	if len(owned.Items) == 0 {
		return []domain.TaskRegistration{}, nil
	}

	ids := make([]string, 0, len(owned.Items))
	for _, t := range owned.Items {
		ids = append(ids, t.ID)
	}
	pending, err := uc.registrations.Search(ctx, repository.RegistrationFilter{
		TaskIDs:  ids,
		Statuses: []domain.RegistrationStatus{domain.RegistrationPending},
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	return pending.Items, nil
}

func (uc *UseCase) GetRegistration(ctx context.Context, id string) (*domain.TaskRegistration, error) {
	reg, err := uc.registrations.GetByID(ctx, id)
	return reg, domain.Internal(err)
}

func (uc *UseCase) ListByUser(ctx context.Context, userID string, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	result, err := uc.registrations.ListByUser(ctx, userID, page)
	return result, domain.Internal(err)
}

func (uc *UseCase) ListByTask(ctx context.Context, taskID string, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	result, err := uc.registrations.ListByTask(ctx, taskID, page)
	return result, domain.Internal(err)
}

// AuthorizeReview checks that actor may review registrationID on behalf of the owning organization.
func (uc *UseCase) AuthorizeReview(ctx context.Context, actor domain.Identity, registrationID string) error {
	reg, err := uc.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return domain.Internal(err)
	}
	task, err := uc.tasks.GetByID(ctx, reg.TaskID)
	if err != nil {
		return domain.Internal(err)
	}
	if !actor.CanManage(task.OrganizationID) {
		return domain.ErrForbidden
	}
	return nil
}

// releasingTransition persists a move to target and then frees the registration's slot.
// If freeing fails the registration is restored to its previous state.
func (uc *UseCase) releasingTransition(ctx context.Context, reg *domain.TaskRegistration, target domain.RegistrationStatus, mutate func(*domain.TaskRegistration)) error {
	before := *reg
	if err := reg.TransitionTo(target); err != nil {
		return err
	}
	mutate(reg)

	err := uc.pair(ctx,
		func(ctx context.Context) error {
			return uc.registrations.Update(ctx, reg)
		},
		func(ctx context.Context) error {
			restored := before
			restored.Version = reg.Version
			if err := uc.registrations.Update(ctx, &restored); err != nil {
				uc.logger.Error("slot remains reserved for a closed registration",
					zap.String("registration_id", reg.ID),
					zap.String("task_id", reg.TaskID))
				return err
			}
			*reg = restored
			return nil
		},
		func(ctx context.Context) error {
			return uc.releaseSlot(ctx, reg.TaskID)
		},
	)
	return domain.Internal(err)
}

// releaseSlot frees a slot, retrying transient failures outside a transaction
// so the registration is only restored when storage stays unavailable.
func (uc *UseCase) releaseSlot(ctx context.Context, taskID string) error {
	if uc.tx != nil {
		_, err := uc.slots.ReleaseSlot(ctx, taskID)
		return err
	}

	ctx = context.WithoutCancel(ctx)
	var err error
	for attempt := 1; attempt <= releaseAttempts; attempt++ {
		if _, err = uc.slots.ReleaseSlot(ctx, taskID); err == nil {
			return nil
		}
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return err
		}
		uc.logger.Warn("slot release failed",
			zap.String("task_id", taskID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < releaseAttempts {
			time.Sleep(time.Duration(attempt) * uc.releaseBackoff)
		}
	}
	return err
}

// pair runs first and second as one logical unit. With a transactor both run in
// one transaction; otherwise undo reverts first when second fails.
func (uc *UseCase) pair(ctx context.Context, first, undo, second func(ctx context.Context) error) error {
	if uc.tx != nil {
		return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := first(ctx); err != nil {
				return err
			}
			return second(ctx)
		})
	}

	if err := first(ctx); err != nil {
		return err
	}
	err := second(ctx)
	if err == nil {
		return nil
	}
	// the caller may already be gone; the rollback must still run
	if undoErr := undo(context.WithoutCancel(ctx)); undoErr != nil {
		uc.logger.Error("compensation failed", zap.NamedError("cause", err), zap.Error(undoErr))
	}
	return err
}

func (uc *UseCase) notify(ctx context.Context, name string, reg *domain.TaskRegistration, actorID string) {
	if uc.notifier == nil {
		return
	}
	n := domain.NewRegistrationNotification(name, reg, actorID)
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := uc.notifier.Notify(nctx, n); err != nil {
			uc.logger.Warn("notification failed",
				zap.String("event", n.Name),
				zap.String("registration_id", n.RegistrationID),
				zap.Error(err))
		}
	}()
}
