package redis

import (
	"context"
	"os"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository/memory"
)

func urgentTask(t *testing.T, store *memory.TaskStore, title string) *domain.VolunteerTask {
	t.Helper()
	task, err := store.Create(context.Background(), &domain.VolunteerTask{
		Title: title, MaxVolunteers: 2, Status: domain.TaskStatusActive, IsUrgent: true,
		Category: domain.CategoryHealth, OrganizationID: "org", CreatedBy: "c",
		StartDate: time.Now(), EndDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	return task
}

func TestFeaturedFallsBackWhenRedisIsDown(t *testing.T) {
	store := memory.NewTaskStore()
	urgentTask(t, store, "Blood drive")

	client := redislib.NewClient(&redislib.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	repo := NewCachedTaskRepository(store, client, time.Minute, zap.New(core))

	featured, err := repo.Featured(context.Background())
	require.NoError(t, err, "cache failures never fail the read")
	require.Len(t, featured, 1)
	assert.Equal(t, "Blood drive", featured[0].Title)
	assert.Equal(t, 2, logs.FilterMessage("featured cache read failed").Len()+logs.FilterMessage("featured cache write failed").Len())
}

func TestFeaturedCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redislib.ParseURL(url)
	require.NoError(t, err)
	client := redislib.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := memory.NewTaskStore()
	repo := NewCachedTaskRepository(store, client, time.Minute, nil)
	require.NoError(t, client.Del(ctx, "volunteer:"+featuredKey).Err())

	first := urgentTask(t, store, "Shelter meals")
	featured, err := repo.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)

	// written behind the cache's back: still served from Redis
	urgentTask(t, store, "Hidden")
	featured, err = repo.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	_, err = repo.IncrementVolunteers(ctx, first.ID)
	require.NoError(t, err)
	featured, err = repo.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 2, "slot changes on urgent tasks invalidate the cache")
}
