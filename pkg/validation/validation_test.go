package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/volunteer/domain"
)

func validTask() *domain.VolunteerTask {
	start := time.Now().Add(24 * time.Hour)
	return &domain.VolunteerTask{
		Title:          "Park cleanup",
		StartDate:      start,
		EndDate:        start.Add(3 * time.Hour),
		MaxVolunteers:  10,
		Category:       domain.CategoryEnvironment,
		OrganizationID: "org-1",
		CreatedBy:      "user-1",
	}
}

func TestStructAcceptsValidTask(t *testing.T) {
	assert.NoError(t, Struct(validTask()))
}

func TestStructRejectsInvalidTask(t *testing.T) {
	lat := 120.0
	tests := []struct {
		name  string
		edit  func(*domain.VolunteerTask)
		field string
	}{
		{"missing title", func(t *domain.VolunteerTask) { t.Title = "" }, "Title"},
		{"zero capacity", func(t *domain.VolunteerTask) { t.MaxVolunteers = 0 }, "MaxVolunteers"},
		{"end before start", func(t *domain.VolunteerTask) { t.EndDate = t.StartDate.Add(-time.Hour) }, "EndDate"},
		{"unknown category", func(t *domain.VolunteerTask) { t.Category = "gardening" }, "Category"},
		{"latitude out of range", func(t *domain.VolunteerTask) { t.Location.Latitude = &lat }, "Latitude"},
		{"occupancy above capacity", func(t *domain.VolunteerTask) { t.CurrentVolunteers = 11 }, "CurrentVolunteers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.edit(task)

			err := Struct(task)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidationFailed))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestStructRegistrationLimits(t *testing.T) {
	reg := &domain.TaskRegistration{UserID: "u1", TaskID: "t1", Message: strings.Repeat("a", domain.MaxMessageLength)}
	assert.NoError(t, Struct(reg))

	reg.Message += "a"
	assert.True(t, domain.IsDomainError(Struct(reg), domain.ErrCodeValidationFailed))

	reg.Message = ""
	for _, rating := range []int{0, 6} {
		r := rating
		reg.Rating = &r
		assert.Error(t, Struct(reg), "rating %d", rating)
	}
	five := 5
	reg.Rating = &five
	assert.NoError(t, Struct(reg))
}
