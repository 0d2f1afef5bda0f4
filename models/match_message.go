package models

import "time"

type MatchMessage struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty"`
}
