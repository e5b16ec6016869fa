// Package geo filters tasks by great-circle distance.
package geo

import (
	"math"

	"github.com/fastygo/volunteer/domain"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the haversine distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// TaskDistanceKm returns the distance from origin to task, or false when the task has no coordinates.
func TaskDistanceKm(task *domain.VolunteerTask, origin Point) (float64, bool) {
	if task == nil || !task.Location.HasCoordinates() {
		return 0, false
	}
	return DistanceKm(origin, Point{Lat: *task.Location.Latitude, Lng: *task.Location.Longitude}), true
}

// WithinRadius keeps the tasks whose distance from origin is at most radiusKm.
// Tasks missing either coordinate are dropped. Input order is preserved.
func WithinRadius(tasks []domain.VolunteerTask, origin Point, radiusKm float64) []domain.VolunteerTask {
	out := make([]domain.VolunteerTask, 0, len(tasks))
	for i := range tasks {
		d, ok := TaskDistanceKm(&tasks[i], origin)
		if ok && d <= radiusKm {
			out = append(out, tasks[i])
		}
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
