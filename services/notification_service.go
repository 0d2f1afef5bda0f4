package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/push"
	"github.com/padelhub/padelhub-server/repositories"
)

const (
	defaultNotificationIcon  = "/icons/icon-192x192.svg"
	defaultNotificationBadge = "/icons/icon-72x72.svg"

	defaultHistoryLimit = 50

	// The sweep looks at matches starting between 60 and 70 minutes from
	// now. With a 10 minute sweep interval every match falls into exactly
	// one window.
	reminderLeadTime    = 60 * time.Minute
	reminderWindowWidth = 10 * time.Minute
)

type SubscribeInput struct {
	Endpoint  string  `json:"endpoint"`
	P256DH    string  `json:"p256dh"`
	Auth      string  `json:"auth"`
	UserAgent *string `json:"user_agent"`
}

// PushMessage is what gets serialized into the web push payload.
type PushMessage struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon"`
	Badge string          `json:"badge"`
	Tag   string          `json:"tag,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendResult counts delivery outcomes across a user's subscriptions.
type SendResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type NotificationService interface {
	Subscribe(ctx context.Context, userID string, input SubscribeInput) (*models.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID, endpoint string) error
	GetUserSubscriptions(ctx context.Context, userID string) ([]*models.PushSubscription, error)

	// SendPushNotification fans the message out to every active
	// subscription of the user. A user with no subscriptions is not an
	// error; the result simply reports zero deliveries.
	SendPushNotification(ctx context.Context, userID string, message PushMessage) (SendResult, error)

	// CheckUpcomingMatches notifies every player of a pending match that
	// starts about an hour from now. Safe to call repeatedly; each
	// (player, match) pair is reminded at most once.
	CheckUpcomingMatches(ctx context.Context) error

	GetUserNotificationHistory(ctx context.Context, userID string, limit int) ([]*models.NotificationLog, error)

	// VAPIDPublicKey exposes the application server key browsers need to
	// create a subscription.
	VAPIDPublicKey() string
}

type notificationService struct {
	subRepo   repositories.PushSubscriptionRepository
	logRepo    repositories.NotificationLogRepository
	matchRepo  repositories.MatchRepository
	playerRepo repositories.MatchPlayerRepository
	sender     push.Sender
	publicKey  string
	logger     *slog.Logger

	now func() time.Time
}

func NewNotificationService(
	subRepo repositories.PushSubscriptionRepository,
	logRepo repositories.NotificationLogRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.MatchPlayerRepository,
	sender push.Sender,
	vapidPublicKey string,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		subRepo:    subRepo,
		logRepo:    logRepo,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		sender:     sender,
		publicKey:  vapidPublicKey,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *notificationService) Subscribe(ctx context.Context, userID string, input SubscribeInput) (*models.PushSubscription, error) {
	if input.Endpoint == "" || input.P256DH == "" || input.Auth == "" {
		return nil, fmt.Errorf("%w: endpoint, p256dh and auth are required", ErrValidationFailed)
	}

	sub := &models.PushSubscription{
		UserID:    userID,
		Endpoint:  input.Endpoint,
		P256DH:    input.P256DH,
		Auth:      input.Auth,
		UserAgent: input.UserAgent,
	}
	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save push subscription: %w", err)
	}
	return sub, nil
}

func (s *notificationService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrValidationFailed)
	}

	err := s.subRepo.Deactivate(ctx, userID, endpoint)
	if err != nil && !errors.Is(err, repositories.ErrPushSubscriptionNotFound) {
		return fmt.Errorf("failed to deactivate push subscription: %w", err)
	}
	return nil
}

func (s *notificationService) GetUserSubscriptions(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	subs, err := s.subRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}

func (s *notificationService) SendPushNotification(ctx context.Context, userID string, message PushMessage) (SendResult, error) {
	if s.sender == nil {
		return SendResult{}, ErrPushNotConfigured
	}

	subs, err := s.subRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return SendResult{}, nil
	}

	if message.Icon == "" {
		message.Icon = defaultNotificationIcon
	}
	if message.Badge == "" {
		message.Badge = defaultNotificationBadge
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to encode push payload: %w", err)
	}

	var sent, failed int64
	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			status, sendErr := s.sender.Send(gctx, sub, payload)
			if sendErr != nil {
				atomic.AddInt64(&failed, 1)
				if status == http.StatusGone {
					if deactivateErr := s.subRepo.DeactivateByID(gctx, sub.ID); deactivateErr != nil {
						s.logger.Error("failed to deactivate dead subscription",
							slog.String("subscription_id", sub.ID),
							slog.Any("error", deactivateErr))
					}
				} else {
					s.logger.Warn("push delivery failed",
						slog.String("subscription_id", sub.ID),
						slog.Any("error", sendErr))
				}
				return nil
			}
			atomic.AddInt64(&sent, 1)
			return nil
		})
	}
	// Goroutines report failures through the counters, never as errors.
	_ = g.Wait()

	return SendResult{Sent: int(sent), Failed: int(failed)}, nil
}

func (s *notificationService) CheckUpcomingMatches(ctx context.Context) error {
	now := s.now()
	from := now.Add(reminderLeadTime)
	to := from.Add(reminderWindowWidth)

	matches, err := s.matchRepo.ListStartingBetween(ctx, from, to, models.MatchStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list upcoming matches: %w", err)
	}

	for _, match := range matches {
		clubName := "your club"
		if match.Club != nil {
			clubName = match.Club.Name
		}
		message := PushMessage{
			Title: "Match Starting Soon!",
			Body:  fmt.Sprintf("Your match starts at %s at %s", match.StartDate.Format("15:04"), clubName),
			Tag:   fmt.Sprintf("match-%s", match.ID),
		}

		// The window query returns matches without their rosters.
		players, err := s.playerRepo.ListByMatch(ctx, match.ID)
		if err != nil {
			s.logger.Error("failed to load roster for match reminder",
				slog.String("match_id", match.ID),
				slog.Any("error", err))
			continue
		}

		for _, player := range players {
			if err := s.remindPlayer(ctx, player.UserID, match, message); err != nil {
				s.logger.Error("failed to send match reminder",
					slog.String("match_id", match.ID),
					slog.String("user_id", player.UserID),
					slog.Any("error", err))
			}
		}
	}
	return nil
}

// remindPlayer delivers one starting-soon reminder and records the
// attempt. The log row is written after the delivery attempt, so a crash
// in between can re-send but never silently drop a reminder.
func (s *notificationService) remindPlayer(ctx context.Context, userID string, match *models.Match, message PushMessage) error {
	alreadySent, err := s.logRepo.HasSent(ctx, userID, match.ID, models.NotificationMatchStartingSoon)
	if err != nil {
		return fmt.Errorf("failed to check reminder log: %w", err)
	}
	if alreadySent {
		return nil
	}

	result, sendErr := s.SendPushNotification(ctx, userID, message)

	matchID := match.ID
	log := &models.NotificationLog{
		UserID:  userID,
		MatchID: &matchID,
		Type:    models.NotificationMatchStartingSoon,
		Title:   message.Title,
		Body:    message.Body,
	}

	switch {
	case sendErr != nil:
		errMsg := sendErr.Error()
		log.Status = models.NotificationStatusFailed
		log.ErrorMessage = &errMsg
	case result.Sent == 0:
		errMsg := "no active subscriptions"
		if result.Failed > 0 {
			errMsg = fmt.Sprintf("all %d deliveries failed", result.Failed)
		}
		log.Status = models.NotificationStatusFailed
		log.ErrorMessage = &errMsg
	default:
		sentAt := s.now()
		log.Status = models.NotificationStatusSent
		log.SentAt = &sentAt
	}

	if err := s.logRepo.Create(ctx, log); err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}
	return sendErr
}

func (s *notificationService) GetUserNotificationHistory(ctx context.Context, userID string, limit int) ([]*models.NotificationLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	logs, err := s.logRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification history: %w", err)
	}
	return logs, nil
}

func (s *notificationService) VAPIDPublicKey() string {
	return s.publicKey
}
