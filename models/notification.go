package models

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationMatchStartingSoon NotificationType = "MATCH_STARTING_SOON"
	NotificationMatchCancelled    NotificationType = "MATCH_CANCELLED"
	NotificationMatchUpdated      NotificationType = "MATCH_UPDATED"
	// Defined in the schema and reserved for future dispatch paths;
	// nothing emits these today.
	NotificationPlayerJoined NotificationType = "PLAYER_JOINED"
	NotificationPlayerLeft   NotificationType = "PLAYER_LEFT"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// PushSubscription is a browser push endpoint registered by a user.
// Dead endpoints are deactivated, never deleted.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256DH    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	IsActive  bool      `json:"is_active"`
	UserAgent *string   `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotificationLog records one dispatch attempt per (user, match, type).
// A SENT row doubles as the idempotency guard for the starting-soon sweep.
type NotificationLog struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	MatchID      *string            `json:"match_id,omitempty"`
	Type         NotificationType   `json:"type"`
	Status       NotificationStatus `json:"status"`
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	Data         json.RawMessage    `json:"data,omitempty"`
	ErrorMessage *string            `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	SentAt       *time.Time         `json:"sent_at,omitempty"`
}
