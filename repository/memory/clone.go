package memory

import (
	"time"

	"github.com/fastygo/volunteer/domain"
)

func cloneTask(t domain.VolunteerTask) domain.VolunteerTask {
	t.Requirements = cloneStrings(t.Requirements)
	t.Skills = cloneStrings(t.Skills)
	t.Tags = cloneStrings(t.Tags)
	t.ApplicationDeadline = cloneTime(t.ApplicationDeadline)
	t.Location.Latitude = cloneFloat(t.Location.Latitude)
	t.Location.Longitude = cloneFloat(t.Location.Longitude)
	return t
}

func cloneRegistration(r domain.TaskRegistration) domain.TaskRegistration {
	r.ReviewedAt = cloneTime(r.ReviewedAt)
	r.CompletedAt = cloneTime(r.CompletedAt)
	if r.Rating != nil {
		rating := *r.Rating
		r.Rating = &rating
	}
	return r
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneTime(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
