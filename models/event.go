package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is an event price. It encodes as a JSON number so the frontend can compare it with 0.
type Money = decimal.Decimal

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Date        time.Time `json:"date"`
	MaxCapacity int       `json:"max_capacity"`
	Price       Money     `json:"price"`
	OrganizerID *int64    `json:"organizer_id"`
}

// Started reports whether the event date is at or before now.
func (e Event) Started(now time.Time) bool {
	return !e.Date.After(now)
}

// EventFilter narrows paginated event listings. Zero values mean "no filter".
type EventFilter struct {
	Date        string // YYYY-MM-DD
	Country     string
	OrganizerID int64
	CategoryID  int64
}

type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

type DateCount struct {
	EventDate  string `json:"event_date"`
	EventCount int    `json:"event_count"`
}

type CountryCount struct {
	Country    string `json:"country"`
	EventCount int    `json:"event_count"`
}

type OrganizerCount struct {
	OrganizerID   int64  `json:"organizer_id"`
	OrganizerName string `json:"organizer_name"`
	EventCount    int    `json:"event_count"`
}

// Availability answers GET /events/:id/registrations.
type Availability struct {
	EventID        int64 `json:"event_id"`
	MaxCapacity    int   `json:"max_capacity"`
	Registered     int   `json:"registered"`
	AvailableSlots int   `json:"available_slots"`
}

type Organizer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type Category struct {
	ID         int64  `json:"id"`
	Name       string `json:"name" binding:"required"`
	EventCount *int   `json:"event_count,omitempty"`
}

type EventCategory struct {
	EventID    FlexInt `json:"event_id" binding:"required"`
	CategoryID FlexInt `json:"category_id" binding:"required"`
}

// MaxCategoriesPerEvent is enforced when linking categories.
const MaxCategoriesPerEvent = 2
