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

type taskEntry struct {
	task domain.VolunteerTask
	seq  int64
}

// TaskStore keeps tasks in process memory. Every capacity change happens under
// the write lock, which makes the conditional increment atomic.
type TaskStore struct {
	mu    sync.RWMutex
	seq   int64
	tasks map[string]*taskEntry
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*taskEntry),
	}
}

func (s *TaskStore) GetByID(_ context.Context, id string) (*domain.VolunteerTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task := cloneTask(entry.task)
	return &task, nil
}

func (s *TaskStore) Create(_ context.Context, task *domain.VolunteerTask) (*domain.VolunteerTask, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Version == 0 {
		task.Version = 1
	}
	task.Touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return nil, domain.NewError(domain.ErrCodeConcurrencyConflict, "task already exists")
	}
	s.seq++
	s.tasks[task.ID] = &taskEntry{task: cloneTask(*task), seq: s.seq}
	return task, nil
}

func (s *TaskStore) Update(_ context.Context, task *domain.VolunteerTask) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if entry.task.Version != task.Version {
		return domain.ErrConcurrencyConflict
	}
	if task.MaxVolunteers < entry.task.CurrentVolunteers {
		return domain.ErrCapacityBelowOccupancy
	}
	task.Version++
	task.CurrentVolunteers = entry.task.CurrentVolunteers
	task.CreatedAt = entry.task.CreatedAt
	task.UpdatedAt = time.Now()
	entry.task = cloneTask(*task)
	return nil
}

func (s *TaskStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if entry.task.CurrentVolunteers > 0 {
		return domain.ErrTaskHasRegistrations
	}
	delete(s.tasks, id)
	return nil
}

func (s *TaskStore) List(ctx context.Context, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	if err := page.Validate(); err != nil {
		return repository.Page[domain.VolunteerTask]{}, err
	}
	return s.Search(ctx, repository.TaskFilter{Pagination: page})
}

func (s *TaskStore) Search(_ context.Context, filter repository.TaskFilter) (repository.Page[domain.VolunteerTask], error) {
	s.mu.RLock()
	matched := make([]*taskEntry, 0, len(s.tasks))
	for _, entry := range s.tasks {
		if filter.Matches(&entry.task) {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})
	tasks := make([]domain.VolunteerTask, 0, len(matched))
	for _, entry := range matched {
		tasks = append(tasks, cloneTask(entry.task))
	}
	s.mu.RUnlock()

	return repository.Slice(tasks, filter.Pagination), nil
}

func (s *TaskStore) ListByOrganization(ctx context.Context, organizationID string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return s.pagedSearch(ctx, repository.TaskFilter{OrganizationID: organizationID, Pagination: page})
}

func (s *TaskStore) ListByCreator(ctx context.Context, userID string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return s.pagedSearch(ctx, repository.TaskFilter{CreatedBy: userID, Pagination: page})
}

func (s *TaskStore) ListByCategory(ctx context.Context, category domain.Category, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return s.pagedSearch(ctx, repository.TaskFilter{Category: category, Pagination: page})
}

func (s *TaskStore) ListActive(ctx context.Context, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return s.pagedSearch(ctx, repository.TaskFilter{
		Statuses:   []domain.TaskStatus{domain.TaskStatusActive},
		Pagination: page,
	})
}

func (s *TaskStore) TextSearch(ctx context.Context, query string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return s.pagedSearch(ctx, repository.TaskFilter{Query: query, Pagination: page})
}

func (s *TaskStore) Featured(ctx context.Context) ([]domain.VolunteerTask, error) {
	urgent := true
	result, err := s.Search(ctx, repository.TaskFilter{
		Statuses:   []domain.TaskStatus{domain.TaskStatusActive},
		Urgent:     &urgent,
		Pagination: repository.Pagination{Page: 1, PageSize: repository.FeaturedLimit},
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *TaskStore) IncrementVolunteers(_ context.Context, id string) (*domain.VolunteerTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if entry.task.IsFull() {
		return nil, domain.ErrTaskFull
	}
	if entry.task.Status != domain.TaskStatusActive {
		return nil, domain.ErrTaskNotOpen
	}
	entry.task.CurrentVolunteers++
	entry.task.UpdatedAt = time.Now()
	task := cloneTask(entry.task)
	return &task, nil
}

func (s *TaskStore) DecrementVolunteers(_ context.Context, id string) (*domain.VolunteerTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if entry.task.CurrentVolunteers > 0 {
		entry.task.CurrentVolunteers--
		entry.task.UpdatedAt = time.Now()
	}
	task := cloneTask(entry.task)
	return &task, nil
}

func (s *TaskStore) pagedSearch(ctx context.Context, filter repository.TaskFilter) (repository.Page[domain.VolunteerTask], error) {
	if err := filter.Pagination.Validate(); err != nil {
		return repository.Page[domain.VolunteerTask]{}, err
	}
	return s.Search(ctx, filter)
}

var _ repository.TaskRepository = (*TaskStore)(nil)
