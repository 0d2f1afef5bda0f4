package models

import "time"

type SidePreference string

const (
	SideLeft  SidePreference = "left"
	SideRight SidePreference = "right"
)

type User struct {
	ID                string          `json:"id"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Email             string          `json:"email"`
	GoogleID          *string         `json:"google_id,omitempty"`
	Phone             *string         `json:"phone,omitempty"`
	IsUserVerified    bool            `json:"is_user_verified"`
	ProfilePictureURL *string         `json:"profile_picture_url,omitempty"`
	Category          int             `json:"category"`
	MatchesPlayed     int             `json:"matches_played"`
	City              *string         `json:"city,omitempty"`
	SidePreference    *SidePreference `json:"side_preference,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
