package models

import "time"

const (
	StatusRegistered = "registered"
	StatusCanceled   = "canceled"
)

// MaxCancellations is how many times a user may cancel the same event before registering is refused.
const MaxCancellations = 2

// Reasons RegisterChecked refuses a registration with.
const (
	ReasonAlreadyRegistered = "User is already registered for this event."
	ReasonCancelLimit       = "Registration limit reached: this event was canceled too many times."
	ReasonEventFull         = "Event is at full capacity."
)

// CancelCutoff is the minimum time left before an event for a registration to be canceled.
const CancelCutoff = 24 * time.Hour

type Registration struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	EventID          int64     `json:"event_id"`
	Status           string    `json:"status"`
	RegistrationDate time.Time `json:"registration_date"`
}

func ValidStatus(s string) bool {
	return s == StatusRegistered || s == StatusCanceled
}

type Feedback struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	EventID     int64     `json:"event_id"`
	CommentText string    `json:"comment_text"`
	RatingValue int       `json:"rating_value"`
	Timestamp   time.Time `json:"timestamp"`
}
