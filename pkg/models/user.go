package models

import (
	"time"
)

// User represents a platform account. A user doubles as a channel: other
// users subscribe to it and its uploads appear in watch histories.
type User struct {
	ID            string    `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	FullName      string    `json:"full_name" db:"full_name"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	AvatarURL     string    `json:"avatar" db:"avatar_url"`
	CoverImageURL string    `json:"cover_image,omitempty" db:"cover_image_url"`
	RefreshToken  string    `json:"-" db:"refresh_token"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Public returns the wire-safe projection of the user. The password hash and
// the refresh token never leave the process.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// PublicUser is the sanitized user record returned by the API.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"cover_image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TokenPair is an access/refresh token pair issued at login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
