package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/volunteer/domain"
)

func ptr(v float64) *float64 { return &v }

func taskAt(id string, lat, lng *float64) domain.VolunteerTask {
	return domain.VolunteerTask{
		ID:       id,
		Location: domain.Location{Latitude: lat, Longitude: lng},
	}
}

func TestDistanceKm(t *testing.T) {
	kigali := Point{Lat: -1.9536, Lng: 30.0906}
	nearby := Point{Lat: -1.9441, Lng: 30.0619}

	d := DistanceKm(kigali, nearby)
	assert.InDelta(t, 3.36, d, 0.05)
	assert.InDelta(t, d, DistanceKm(nearby, kigali), 1e-9)
	assert.Zero(t, DistanceKm(kigali, kigali))
}

func TestWithinRadius(t *testing.T) {
	origin := Point{Lat: -1.9536, Lng: 30.0906}
	tasks := []domain.VolunteerTask{
		taskAt("near", ptr(-1.9441), ptr(30.0619)),
		taskAt("no-coords", nil, nil),
		taskAt("lat-only", ptr(-1.9441), nil),
		taskAt("far", ptr(-2.5), ptr(29.0)),
	}

	tests := []struct {
		name   string
		radius float64
		want   []string
	}{
		{name: "5 km keeps the nearby task", radius: 5, want: []string{"near"}},
		{name: "half a kilometre excludes it", radius: 0.5, want: nil},
		{name: "large radius keeps every task with coordinates", radius: 500, want: []string{"near", "far"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithinRadius(tasks, origin, tt.radius)
			ids := make([]string, 0, len(got))
			for _, task := range got {
				ids = append(ids, task.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestWithinRadiusIsInclusive(t *testing.T) {
	origin := Point{Lat: 0, Lng: 0}
	task := taskAt("edge", ptr(0), ptr(1))
	d, ok := TaskDistanceKm(&task, origin)
	require.True(t, ok)

	got := WithinRadius([]domain.VolunteerTask{task}, origin, d)
	assert.Len(t, got, 1)
}
