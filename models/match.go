package models

import "time"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "PENDING"
	MatchStatusInProgress MatchStatus = "IN_PROGRESS"
	MatchStatusCompleted  MatchStatus = "COMPLETED"
	MatchStatusCancelled  MatchStatus = "CANCELLED"
)

// Valid reports whether s is one of the known match statuses.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusInProgress, MatchStatusCompleted, MatchStatusCancelled:
		return true
	}
	return false
}

type Match struct {
	ID               string      `json:"id"`
	ClubID           string      `json:"club_id"`
	CourtID          *string     `json:"court_id,omitempty"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	Category         int         `json:"category"`
	Status           MatchStatus `json:"status"`
	Password         *string     `json:"password,omitempty"`
	IsCourtScheduled bool        `json:"is_court_scheduled"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	// Eagerly loaded relations, nil/empty unless the query resolves them.
	Club    *Club          `json:"club,omitempty"`
	Players []*MatchPlayer `json:"players,omitempty"`
}
