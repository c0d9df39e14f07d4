package models

import (
	"context"
	"time"
)

// ===== Relational store (Postgres) =====

type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	// Create hashes u.Password before storing it and fills u.ID / u.CreatedAt.
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, id int64, upd UserUpdate) (User, error)
	Delete(ctx context.Context, id int64) error
	// ValidateCredentials returns ErrNotFound for an unknown email and
	// ErrInvalidCredentials for a wrong password.
	ValidateCredentials(ctx context.Context, email, plain string) (User, error)
	CheckPassword(ctx context.Context, id int64, plain string) error
}

type EventRepository interface {
	List(ctx context.Context) ([]Event, error)
	// ListPage returns filtered events, newest date first.
	ListPage(ctx context.Context, f EventFilter, p Page) ([]Event, error)
	Count(ctx context.Context, f EventFilter) (int, error)
	Upcoming(ctx context.Context, now time.Time, limit int) ([]Event, error)
	StartingBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	GetByID(ctx context.Context, id int64) (Event, error)
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id int64) error
	CountByDate(ctx context.Context) ([]DateCount, error)
	CountByCountry(ctx context.Context) ([]CountryCount, error)
	CountByOrganizer(ctx context.Context) ([]OrganizerCount, error)
}

type RegistrationRepository interface {
	List(ctx context.Context) ([]Registration, error)
	GetByID(ctx context.Context, id int64) (Registration, error)
	Create(ctx context.Context, r *Registration) error
	Update(ctx context.Context, r *Registration) error
	Delete(ctx context.Context, id int64) error
	FindActive(ctx context.Context, userID, eventID int64) (Registration, error)
	// RegisterChecked makes r an active registration once the duplicate,
	// cancellation and capacity rules pass. With a zero ID a row is inserted,
	// otherwise row r.ID is re-activated. Rule failures are RuleErrors.
	RegisterChecked(ctx context.Context, r *Registration) error
	CountActiveForEvent(ctx context.Context, eventID int64) (int, error)
	ActiveUserIDs(ctx context.Context, eventID int64) ([]int64, error)
	ListForUser(ctx context.Context, userID int64, p Page) ([]UserRegistrationEvent, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
}

type OrganizerRepository interface {
	List(ctx context.Context) ([]Organizer, error)
	GetByID(ctx context.Context, id int64) (Organizer, error)
	Create(ctx context.Context, o *Organizer) error
	Update(ctx context.Context, o *Organizer) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	ListWithEventCount(ctx context.Context) ([]Category, error)
	ListForEvent(ctx context.Context, eventID int64) ([]Category, error)
	AddToEvent(ctx context.Context, eventID, categoryID int64) error
	RemoveFromEvent(ctx context.Context, eventID, categoryID int64) error
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByID(ctx context.Context, id int64) (Feedback, error)
	Delete(ctx context.Context, id int64) error
	ListForEvent(ctx context.Context, eventID int64, p Page) ([]Feedback, error)
}

// ===== Document store (MongoDB) =====

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	ListByEvent(ctx context.Context, eventID string) ([]Comment, error)
}

type RatingRepository interface {
	Create(ctx context.Context, r *Rating) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type InteractionRepository interface {
	Create(ctx context.Context, i *Interaction) error
	ListByUser(ctx context.Context, userID string) ([]Interaction, error)
}

type ErrorLogRepository interface {
	Create(ctx context.Context, e *ErrorLog) error
	List(ctx context.Context) ([]ErrorLog, error)
}

type ContactRepository interface {
	Create(ctx context.Context, m *ContactMessage) error
}

type NewsletterRepository interface {
	// Subscribe returns ErrDuplicate when the email is already subscribed.
	Subscribe(ctx context.Context, s *NewsletterSubscriber) error
}
