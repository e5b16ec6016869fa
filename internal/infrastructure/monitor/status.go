package monitor

import "time"

// State describes one dependency.
type State string

const (
	StateUp       State = "up"
	StateDown     State = "down"
	StateDisabled State = "disabled"
)

type Status struct {
	PostgreSQL State     `json:"postgresql"`
	Redis      State     `json:"redis"`
	Outbox     State     `json:"outbox"`
	OutboxSize int       `json:"outbox_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether no configured dependency is down.
func (s Status) Healthy() bool {
	return s.PostgreSQL != StateDown && s.Redis != StateDown && s.Outbox != StateDown
}
