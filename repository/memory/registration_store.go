package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository"
)

type registrationEntry struct {
	reg domain.TaskRegistration
	seq int64
}

// RegistrationStore keeps registrations in process memory and enforces the
// one-active-registration-per-pair rule under its write lock.
type RegistrationStore struct {
	mu            sync.RWMutex
	seq           int64
	registrations map[string]*registrationEntry
}

func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{
		registrations: make(map[string]*registrationEntry),
	}
}

func (s *RegistrationStore) GetByID(_ context.Context, id string) (*domain.TaskRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.registrations[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	reg := cloneRegistration(entry.reg)
	return &reg, nil
}

func (s *RegistrationStore) Create(_ context.Context, reg *domain.TaskRegistration) (*domain.TaskRegistration, error) {
	if reg == nil {
		return nil, domain.ErrInvalidPayload
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.RegistrationDate.IsZero() {
		reg.RegistrationDate = time.Now()
	}
	if reg.Version == 0 {
		reg.Version = 1
	}
	reg.UpdatedAt = reg.RegistrationDate

	s.mu.Lock()
	defer s.mu.Unlock()

	if reg.Status.IsActive() && s.activeLocked(reg.UserID, reg.TaskID) != nil {
		return nil, domain.ErrDuplicateRegistration
	}
	s.seq++
	s.registrations[reg.ID] = &registrationEntry{reg: cloneRegistration(*reg), seq: s.seq}
	return reg, nil
}

func (s *RegistrationStore) Update(_ context.Context, reg *domain.TaskRegistration) error {
	if reg == nil {
		return domain.ErrInvalidPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.registrations[reg.ID]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	if entry.reg.Version != reg.Version {
		return domain.ErrConcurrencyConflict
	}
	if reg.Status.IsActive() && !entry.reg.Status.IsActive() {
		if other := s.activeLocked(reg.UserID, reg.TaskID); other != nil && other.reg.ID != reg.ID {
			return domain.ErrDuplicateRegistration
		}
	}
	reg.Version++
	reg.UpdatedAt = time.Now()
	entry.reg = cloneRegistration(*reg)
	return nil
}

func (s *RegistrationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registrations[id]; !ok {
		return domain.ErrRegistrationNotFound
	}
	delete(s.registrations, id)
	return nil
}

func (s *RegistrationStore) List(ctx context.Context, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return s.pagedSearch(ctx, repository.RegistrationFilter{Pagination: page})
}

func (s *RegistrationStore) Search(_ context.Context, filter repository.RegistrationFilter) (repository.Page[domain.TaskRegistration], error) {
	s.mu.RLock()
	matched := make([]*registrationEntry, 0)
	for _, entry := range s.registrations {
		if filter.Matches(&entry.reg) {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.reg.RegistrationDate.Equal(b.reg.RegistrationDate) {
			return a.reg.RegistrationDate.After(b.reg.RegistrationDate)
		}
		return a.seq > b.seq
	})
	regs := make([]domain.TaskRegistration, 0, len(matched))
	for _, entry := range matched {
		regs = append(regs, cloneRegistration(entry.reg))
	}
	s.mu.RUnlock()

	return repository.Slice(regs, filter.Pagination), nil
}

func (s *RegistrationStore) ListByUser(ctx context.Context, userID string, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return s.pagedSearch(ctx, repository.RegistrationFilter{UserID: userID, Pagination: page})
}

func (s *RegistrationStore) ListByTask(ctx context.Context, taskID string, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return s.pagedSearch(ctx, repository.RegistrationFilter{TaskID: taskID, Pagination: page})
}

func (s *RegistrationStore) ListByStatus(ctx context.Context, status domain.RegistrationStatus, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return s.pagedSearch(ctx, repository.RegistrationFilter{
		Statuses:   []domain.RegistrationStatus{status},
		Pagination: page,
	})
}

func (s *RegistrationStore) GetActiveByUserAndTask(_ context.Context, userID, taskID string) (*domain.TaskRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.activeLocked(userID, taskID)
	if entry == nil {
		return nil, domain.ErrRegistrationNotFound
	}
	reg := cloneRegistration(entry.reg)
	return &reg, nil
}

func (s *RegistrationStore) ExistsActive(_ context.Context, userID, taskID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked(userID, taskID) != nil, nil
}

func (s *RegistrationStore) activeLocked(userID, taskID string) *registrationEntry {
	for _, entry := range s.registrations {
		if entry.reg.UserID == userID && entry.reg.TaskID == taskID && entry.reg.Status.IsActive() {
			return entry
		}
	}
	return nil
}

func (s *RegistrationStore) pagedSearch(ctx context.Context, filter repository.RegistrationFilter) (repository.Page[domain.TaskRegistration], error) {
	if err := filter.Pagination.Validate(); err != nil {
		return repository.Page[domain.TaskRegistration]{}, err
	}
	return s.Search(ctx, filter)
}

var _ repository.RegistrationRepository = (*RegistrationStore)(nil)
