// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account record. The JSON shape is the outbound representation:
// the password hash and the avatar storage key never serialize, and session
// tokens live in their own table so they cannot leak through a User value.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Age          int       `json:"age"`
	PasswordHash string    `json:"-"`
	AvatarKey    *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasAvatar reports whether an avatar blob is recorded for the user.
func (u *User) HasAvatar() bool {
	return u.AvatarKey != nil && *u.AvatarKey != ""
}
