package redis

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository"
)

const featuredKey = "tasks:featured"

// cachedTaskRepository serves the featured listing from Redis and delegates everything else.
type cachedTaskRepository struct {
	repository.TaskRepository

	client *redislib.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTaskRepository wraps next with a Redis-backed featured cache.
// Any write that can change the featured set drops the cached entry.
func NewCachedTaskRepository(next repository.TaskRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.TaskRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedTaskRepository{
		TaskRepository: next,
		client:         client,
		prefix:         "volunteer:",
		ttl:            ttl,
		logger:         logger,
	}
}

func (r *cachedTaskRepository) Featured(ctx context.Context) ([]domain.VolunteerTask, error) {
	result, err := r.client.Get(ctx, r.key(featuredKey)).Result()
	if err == nil {
		var tasks []domain.VolunteerTask
		if err := json.Unmarshal([]byte(result), &tasks); err == nil {
			return tasks, nil
		}
	} else if err != redislib.Nil {
		r.logger.Warn("featured cache read failed", zap.Error(err))
	}

	tasks, err := r.TaskRepository.Featured(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(tasks)
	if err != nil {
		return tasks, nil
	}
	if err := r.client.Set(ctx, r.key(featuredKey), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("featured cache write failed", zap.Error(err))
	}
	return tasks, nil
}

func (r *cachedTaskRepository) Create(ctx context.Context, task *domain.VolunteerTask) (*domain.VolunteerTask, error) {
	created, err := r.TaskRepository.Create(ctx, task)
	if err == nil {
		r.invalidate(ctx)
	}
	return created, err
}

func (r *cachedTaskRepository) Update(ctx context.Context, task *domain.VolunteerTask) error {
	err := r.TaskRepository.Update(ctx, task)
	if err == nil {
		r.invalidate(ctx)
	}
	return err
}

func (r *cachedTaskRepository) Delete(ctx context.Context, id string) error {
	err := r.TaskRepository.Delete(ctx, id)
	if err == nil {
		r.invalidate(ctx)
	}
	return err
}

func (r *cachedTaskRepository) IncrementVolunteers(ctx context.Context, id string) (*domain.VolunteerTask, error) {
	task, err := r.TaskRepository.IncrementVolunteers(ctx, id)
	if err == nil && task.IsUrgent {
		r.invalidate(ctx)
	}
	return task, err
}

func (r *cachedTaskRepository) DecrementVolunteers(ctx context.Context, id string) (*domain.VolunteerTask, error) {
	task, err := r.TaskRepository.DecrementVolunteers(ctx, id)
	if err == nil && task.IsUrgent {
		r.invalidate(ctx)
	}
	return task, err
}

func (r *cachedTaskRepository) invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, r.key(featuredKey)).Err(); err != nil {
		r.logger.Warn("featured cache invalidation failed", zap.Error(err))
	}
}

func (r *cachedTaskRepository) key(name string) string {
	return r.prefix + name
}
