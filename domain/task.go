package domain

import (
	"strings"
	"time"
)

// TaskStatus is the availability state of a volunteer task.
type TaskStatus string

const (
	TaskStatusDraft     TaskStatus = "draft"
	TaskStatusActive    TaskStatus = "active"
	TaskStatusPaused    TaskStatus = "paused"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

func (s TaskStatus) String() string { return string(s) }

// IsTerminal reports whether no further transition is possible.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusDraft, TaskStatusActive, TaskStatusPaused, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusDraft:  {TaskStatusActive, TaskStatusCancelled},
	TaskStatusActive: {TaskStatusPaused, TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusPaused: {TaskStatusActive, TaskStatusCompleted, TaskStatusCancelled},
}

// CanTransitionTo reports whether the lifecycle graph allows s -> next.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Category is the closed set of task categories.
type Category string

const (
	CategoryEducation      Category = "education"
	CategoryEnvironment    Category = "environment"
	CategoryHealth         Category = "health"
	CategoryCommunity      Category = "community"
	CategoryAnimals        Category = "animals"
	CategoryElderly        Category = "elderly"
	CategoryChildren       Category = "children"
	CategoryDisasterRelief Category = "disaster_relief"
	CategoryArtsCulture    Category = "arts_culture"
	CategorySports         Category = "sports"
	CategoryTechnology     Category = "technology"
	CategoryOther          Category = "other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryEducation,
	CategoryEnvironment,
	CategoryHealth,
	CategoryCommunity,
	CategoryAnimals,
	CategoryElderly,
	CategoryChildren,
	CategoryDisasterRelief,
	CategoryArtsCulture,
	CategorySports,
	CategoryTechnology,
	CategoryOther,
}

// ParseCategory maps user input onto a known category.
func ParseCategory(raw string) (Category, bool) {
	normalized := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range Categories {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// Location describes where a task takes place.
type Location struct {
	Street    string   `json:"street,omitempty" validate:"max=200"`
	City      string   `json:"city" validate:"max=100"`
	State     string   `json:"state,omitempty" validate:"max=100"`
	ZipCode   string   `json:"zip_code,omitempty" validate:"max=20"`
	Country   string   `json:"country" validate:"max=100"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// VolunteerTask is a time-bounded volunteer opportunity with a capacity limit.
type VolunteerTask struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title" validate:"required,max=200"`
	Description         string     `json:"description" validate:"max=5000"`
	StartDate           time.Time  `json:"start_date" validate:"required"`
	EndDate             time.Time  `json:"end_date" validate:"required,gtfield=StartDate"`
	Location            Location   `json:"location"`
	MaxVolunteers       int        `json:"max_volunteers" validate:"gt=0"`
	CurrentVolunteers   int        `json:"current_volunteers" validate:"gte=0,ltefield=MaxVolunteers"`
	Status              TaskStatus `json:"status"`
	Category            Category   `json:"category" validate:"required,category"`
	Requirements        []string   `json:"requirements,omitempty"`
	Skills              []string   `json:"skills,omitempty"`
	Tags                []string   `json:"tags,omitempty"`
	IsUrgent            bool       `json:"is_urgent"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	OrganizationID      string     `json:"organization_id" validate:"required"`
	CreatedBy           string     `json:"created_by" validate:"required"`
	Version             int        `json:"version"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsFull reports whether every slot is taken.
func (t *VolunteerTask) IsFull() bool {
	return t != nil && t.CurrentVolunteers >= t.MaxVolunteers
}

// RemainingSlots returns the number of free slots, never negative.
func (t *VolunteerTask) RemainingSlots() int {
	if t == nil || t.CurrentVolunteers >= t.MaxVolunteers {
		return 0
	}
	return t.MaxVolunteers - t.CurrentVolunteers
}

// IsAcceptingApplications reports whether a new registration may be opened at now.
func (t *VolunteerTask) IsAcceptingApplications(now time.Time) bool {
	if t == nil || t.Status != TaskStatusActive || t.IsFull() {
		return false
	}
	return t.WithinApplicationWindow(now)
}

// WithinApplicationWindow reports whether now is on or before the application deadline.
func (t *VolunteerTask) WithinApplicationWindow(now time.Time) bool {
	if t == nil {
		return false
	}
	return t.ApplicationDeadline == nil || !now.After(*t.ApplicationDeadline)
}

// HasEnded reports whether the task end date is behind now.
func (t *VolunteerTask) HasEnded(now time.Time) bool {
	return t != nil && !t.EndDate.IsZero() && t.EndDate.Before(now)
}

// MatchesText performs the case-insensitive substring match used by free-text search.
func (t *VolunteerTask) MatchesText(query string) bool {
	if t == nil {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (t *VolunteerTask) Touch() {
	if t == nil {
		return
	}
	t.UpdatedAt = time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}
}

// TransitionTo moves the task to next when the lifecycle graph permits it.
func (t *VolunteerTask) TransitionTo(next TaskStatus) error {
	if t == nil {
		return ErrTaskNotFound
	}
	if !t.Status.CanTransitionTo(next) {
		return InvalidTransition("task", t.Status, next)
	}
	t.Status = next
	return nil
}
