package domain

import "time"

// RegistrationStatus is the review state of a volunteer's application.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationRejected  RegistrationStatus = "rejected"
	RegistrationCompleted RegistrationStatus = "completed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// MaxMessageLength bounds the application message a volunteer may attach.
const MaxMessageLength = 1000

func (s RegistrationStatus) String() string { return string(s) }

// IsActive reports whether the registration still counts towards the one-per-task rule.
func (s RegistrationStatus) IsActive() bool {
	return s != RegistrationCancelled && s != RegistrationRejected
}

// IsTerminal reports whether no further transition is possible.
func (s RegistrationStatus) IsTerminal() bool {
	return s == RegistrationRejected || s == RegistrationCompleted || s == RegistrationCancelled
}

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationCompleted, RegistrationCancelled:
		return true
	}
	return false
}

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationPending:  {RegistrationApproved, RegistrationRejected, RegistrationCancelled},
	RegistrationApproved: {RegistrationCompleted, RegistrationCancelled},
}

// CanTransitionTo reports whether the workflow graph allows s -> next.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, allowed := range registrationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ActiveRegistrationStatuses are the statuses covered by the uniqueness rule.
var ActiveRegistrationStatuses = []RegistrationStatus{
	RegistrationPending,
	RegistrationApproved,
	RegistrationCompleted,
}

// TaskRegistration is a volunteer's application to a task.
type TaskRegistration struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id" validate:"required"`
	TaskID           string             `json:"task_id" validate:"required"`
	RegistrationDate time.Time          `json:"registration_date"`
	Status           RegistrationStatus `json:"status"`
	Message          string             `json:"message,omitempty" validate:"max=1000"`
	ReviewedBy       string             `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time         `json:"reviewed_at,omitempty"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	Rating           *int               `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback         string             `json:"feedback,omitempty" validate:"max=2000"`
	Notes            string             `json:"notes,omitempty" validate:"max=2000"`
	Version          int                `json:"version"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// TransitionTo moves the registration to next when the workflow graph permits it.
func (r *TaskRegistration) TransitionTo(next RegistrationStatus) error {
	if r == nil {
		return ErrRegistrationNotFound
	}
	if !r.Status.CanTransitionTo(next) {
		return InvalidTransition("registration", r.Status, next)
	}
	r.Status = next
	return nil
}
