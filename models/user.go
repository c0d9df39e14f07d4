package models

import "time"

// MaskedPassword replaces the hash in every user payload we send back.
const MaskedPassword = "********"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Password  string    `json:"password,omitempty" binding:"required"`
	FullName  string    `json:"full_name"`
	Country   string    `json:"country"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns a copy that is safe to serialize.
func (u User) Public() User {
	u.Password = ""
	return u
}

// UserUpdate carries a partial update; nil fields are left untouched.
// The profile page only sends the fields the user actually changed.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
	Country  *string `json:"country"`
	Password *string `json:"password" binding:"omitempty,min=1"`
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.FullName == nil && u.Country == nil && u.Password == nil
}

// UserRegistrationEvent is one row of a user's "my registrations" page.
type UserRegistrationEvent struct {
	RegistrationID   int64     `json:"registration_id"`
	EventID          int64     `json:"event_id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	City             string    `json:"city"`
	Country          string    `json:"country"`
	EventDate        time.Time `json:"event_date"`
	Price            Money     `json:"price"`
	Status           string    `json:"status"`
	RegistrationDate time.Time `json:"registration_date"`
}
