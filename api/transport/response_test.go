package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/volunteer/repository"
)

func TestNewPage(t *testing.T) {
	env := NewPage(repository.Page[string]{Items: []string{"a", "b"}, Total: 45, Page: 2, PageSize: 20})

	assert.Equal(t, "success", env.Status)
	assert.Equal(t, []string{"a", "b"}, env.Data)
	meta, ok := env.Meta.(PageMeta)
	require.True(t, ok)
	assert.Equal(t, PageMeta{Page: 2, PageSize: 20, Total: 45, TotalPages: 3}, meta)

	empty := NewPage(repository.Page[int]{})
	assert.Equal(t, []int{}, empty.Data)
	assert.Zero(t, empty.Meta.(PageMeta).TotalPages)
}

func TestTaskRequestToDomain(t *testing.T) {
	lat, lng := 48.85, 2.35
	req := TaskRequest{
		Title:         "Library reading hour",
		Category:      "Education",
		MaxVolunteers: 2,
		Location:      LocationRequest{City: "Paris", Latitude: &lat, Longitude: &lng},
		Version:       4,
	}
	task := req.ToDomain("t-1")

	assert.Equal(t, "t-1", task.ID)
	assert.Equal(t, "education", string(task.Category))
	assert.True(t, task.Location.HasCoordinates())
	assert.Equal(t, 4, task.Version)
	assert.Empty(t, task.Status, "status is assigned by the lifecycle")
}
