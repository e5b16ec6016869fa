package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/volunteer/domain"
)

// Item is a notification waiting for the broker to come back.
type Item struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

// NewItem serializes n into an outbox item.
func NewItem(n domain.Notification) (Item, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return Item{}, err
	}
	id := n.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Item{
		ID:        id,
		Event:     n.Name,
		Payload:   payload,
		Timestamp: time.Now(),
	}, nil
}

// Notification decodes the stored payload.
func (i Item) Notification() (domain.Notification, error) {
	var n domain.Notification
	err := json.Unmarshal(i.Payload, &n)
	return n, err
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
