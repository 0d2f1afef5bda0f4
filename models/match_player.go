package models

import "time"

type TeamAssignment string

const (
	TeamUnassigned TeamAssignment = "UNASSIGNED"
	TeamA          TeamAssignment = "A"
	TeamB          TeamAssignment = "B"
)

func (t TeamAssignment) Valid() bool {
	switch t {
	case TeamUnassigned, TeamA, TeamB:
		return true
	}
	return false
}

// MatchPlayer is a roster entry: one (match, user) membership with a team tag.
type MatchPlayer struct {
	ID       string         `json:"id"`
	MatchID  string         `json:"match_id"`
	UserID   string         `json:"user_id"`
	Team     TeamAssignment `json:"team"`
	JoinedAt time.Time      `json:"joined_at"`

	User *User `json:"user,omitempty"`
}
