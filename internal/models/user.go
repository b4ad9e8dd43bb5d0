package models

import "time"

// User is a registered account. Email is unique when present.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          *string   `json:"email,omitempty"`
	HashedPassword *string   `json:"-"` // nil for accounts created through single sign-on
	IsModerator    bool      `json:"is_moderator"`
	RequestID      *int64    `json:"request_id,omitempty"` // latest moderator request, if any
	CreatedAt      time.Time `json:"created_at"`
}

// EmailAddress returns the email or an empty string.
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// HasPassword returns true if the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.HashedPassword != nil && *u.HashedPassword != ""
}
