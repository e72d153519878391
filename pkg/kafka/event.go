package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every message published to Kafka.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Payload       any       `json:"payload"`
}

// NewEvent creates an event envelope with a fresh ID and current timestamp.
func NewEvent(eventType, source string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
