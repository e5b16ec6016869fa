package transport

import (
	"time"

	"github.com/fastygo/volunteer/domain"
)

type LocationRequest struct {
	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zip_code"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// TaskRequest is the body accepted when creating or editing a task.
type TaskRequest struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
	Location            LocationRequest `json:"location"`
	MaxVolunteers       int             `json:"max_volunteers"`
	Category            string          `json:"category"`
	Requirements        []string        `json:"requirements"`
	Skills              []string        `json:"skills"`
	Tags                []string        `json:"tags"`
	IsUrgent            bool            `json:"is_urgent"`
	ApplicationDeadline *time.Time      `json:"application_deadline"`
	OrganizationID      string          `json:"organization_id"`
	Version             int             `json:"version"`
}

// ToDomain converts the request; ownership and status are filled in by the use case.
func (r TaskRequest) ToDomain(id string) *domain.VolunteerTask {
	category, _ := domain.ParseCategory(r.Category)
	return &domain.VolunteerTask{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Location: domain.Location{
			Street:    r.Location.Street,
			City:      r.Location.City,
			State:     r.Location.State,
			ZipCode:   r.Location.ZipCode,
			Country:   r.Location.Country,
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
		},
		MaxVolunteers:       r.MaxVolunteers,
		Category:            category,
		Requirements:        r.Requirements,
		Skills:              r.Skills,
		Tags:                r.Tags,
		IsUrgent:            r.IsUrgent,
		ApplicationDeadline: r.ApplicationDeadline,
		OrganizationID:      r.OrganizationID,
		Version:             r.Version,
	}
}

type RegisterRequest struct {
	Message string `json:"message"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type CompleteRequest struct {
	Rating   *int   `json:"rating"`
	Feedback string `json:"feedback"`
}
