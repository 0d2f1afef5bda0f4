package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/padelhub/padelhub-server/chat"
	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/repositories"
)

const (
	maxMessageLength        = 1000
	defaultMessagePageLimit = 50
)

type MessageService interface {
	Create(ctx context.Context, matchID, userID, text string) (*models.MatchMessage, error)
	// ListByMatch returns a page of at most limit messages in
	// chronological order. With beforeMessageID set, only messages
	// strictly older than that message are returned; an unresolvable
	// cursor is ignored and the most recent page comes back instead.
	ListByMatch(ctx context.Context, matchID string, limit int, beforeMessageID string) ([]*models.MatchMessage, error)
	Delete(ctx context.Context, messageID, userID string) error
}

type messageService struct {
	messageRepo repositories.MatchMessageRepository
	matchRepo   repositories.MatchRepository
	hub         *chat.Hub
}

func NewMessageService(messageRepo repositories.MatchMessageRepository, matchRepo repositories.MatchRepository, hub *chat.Hub) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		matchRepo:   matchRepo,
		hub:         hub,
	}
}

func (s *messageService) Create(ctx context.Context, matchID, userID, text string) (*models.MatchMessage, error) {
	if text == "" {
		return nil, ErrMessageEmpty
	}
	// Length is bounded in characters, not bytes.
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}

	message := &models.MatchMessage{
		MatchID: matchID,
		UserID:  userID,
		Message: text,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(matchID, chat.Event{
			Type:    "NEW_MESSAGE",
			Payload: message,
			MatchID: matchID,
		})
	}
	return message, nil
}

func (s *messageService) ListByMatch(ctx context.Context, matchID string, limit int, beforeMessageID string) ([]*models.MatchMessage, error) {
	if limit <= 0 {
		limit = defaultMessagePageLimit
	}

	var before *time.Time
	if beforeMessageID != "" {
		cursor, err := s.messageRepo.GetByID(ctx, beforeMessageID)
		switch {
		case err == nil:
			before = &cursor.CreatedAt
		case errors.Is(err, repositories.ErrMatchMessageNotFound):
			// Unknown cursor: fall through to the most recent page.
		default:
			return nil, fmt.Errorf("failed to resolve cursor message: %w", err)
		}
	}

	messages, err := s.messageRepo.ListByMatch(ctx, matchID, limit, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for match %s: %w", matchID, err)
	}

	// The repository returns newest first; callers want chronological.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Delete removes a message, but only for its author. A missing message
// and a foreign message yield the same ErrMessageNotFound so callers
// cannot probe for existence.
func (s *messageService) Delete(ctx context.Context, messageID, userID string) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	if message.UserID != userID {
		return ErrMessageNotFound
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repositories.ErrMatchMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(message.MatchID, chat.Event{
			Type:    "MESSAGE_DELETED",
			Payload: map[string]string{"id": messageID},
			MatchID: message.MatchID,
		})
	}
	return nil
}
