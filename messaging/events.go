package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExchangeName is the topic exchange registration events go through.
const ExchangeName = "events"

// Routing keys.
const (
	RegistrationCreated  = "registration.created"
	RegistrationCanceled = "registration.canceled"
)

// RegistrationEvent is the message body for both routing keys.
type RegistrationEvent struct {
	EventID       string           `json:"event_id"`
	EventType     string           `json:"event_type"`
	CorrelationID string           `json:"correlation_id"`
	Timestamp     time.Time        `json:"timestamp"`
	Data          RegistrationData `json:"data"`
}

type RegistrationData struct {
	RegistrationID int64     `json:"registration_id"`
	UserID         int64     `json:"user_id"`
	EventID        int64     `json:"event_id"`
	EventName      string    `json:"event_name"`
	EventDate      time.Time `json:"event_date"`
}

// NewRegistrationEvent stamps a fresh message id and time.
func NewRegistrationEvent(eventType, correlationID string, data RegistrationData) RegistrationEvent {
	return RegistrationEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		Data:          data,
	}
}

func (e RegistrationEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
