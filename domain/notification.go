package domain

import "time"

// Notification names emitted on registration state changes.
const (
	EventRegistrationCreated   = "registration.created"
	EventRegistrationApproved  = "registration.approved"
	EventRegistrationRejected  = "registration.rejected"
	EventRegistrationCancelled = "registration.cancelled"
	EventRegistrationCompleted = "registration.completed"
)

// Notification represents a change applied to a registration, delivered best-effort.
type Notification struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	RegistrationID string             `json:"registration_id"`
	TaskID         string             `json:"task_id"`
	UserID         string             `json:"user_id"`
	ActorID        string             `json:"actor_id,omitempty"`
	Status         RegistrationStatus `json:"status"`
	Metadata       map[string]string  `json:"metadata,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewRegistrationNotification snapshots reg for the named event.
func NewRegistrationNotification(name string, reg *TaskRegistration, actorID string) Notification {
	n := Notification{
		Name:      name,
		ActorID:   actorID,
		CreatedAt: time.Now().UTC(),
	}
	if reg != nil {
		n.RegistrationID = reg.ID
		n.TaskID = reg.TaskID
		n.UserID = reg.UserID
		n.Status = reg.Status
	}
	return n
}
