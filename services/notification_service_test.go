package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/repositories"
)

type notificationFixture struct {
	svc        *notificationService
	subRepo    *fakePushSubscriptionRepo
	logRepo    *fakeNotificationLogRepo
	matchRepo  *fakeMatchRepo
	playerRepo *fakeMatchPlayerRepo
	sender     *fakePushSender
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	f := &notificationFixture{
		subRepo:    newFakePushSubscriptionRepo(),
		logRepo:    newFakeNotificationLogRepo(),
		matchRepo:  newFakeMatchRepo(),
		playerRepo: newFakeMatchPlayerRepo(),
		sender:     newFakePushSender(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(f.subRepo, f.logRepo, f.matchRepo, f.playerRepo, f.sender, "test-public-key", logger)
	f.svc = svc.(*notificationService)
	return f
}

func (f *notificationFixture) subscribe(t *testing.T, userID, endpoint string) *models.PushSubscription {
	t.Helper()
	sub, err := f.svc.Subscribe(context.Background(), userID, SubscribeInput{
		Endpoint: endpoint,
		P256DH:   "p256dh-key",
		Auth:     "auth-secret",
	})
	require.NoError(t, err)
	return sub
}

// seedUpcomingMatch creates a pending match starting 65 minutes after
// the fixed sweep clock, with the given players on the roster. The
// roster lives only in the player repository, mirroring what the SQL
// window query returns (match plus club, Players nil).
func (f *notificationFixture) seedUpcomingMatch(t *testing.T, now time.Time, userIDs ...string) *models.Match {
	t.Helper()
	match := &models.Match{
		ClubID:    "club-1",
		StartDate: now.Add(65 * time.Minute),
		EndDate:   now.Add(155 * time.Minute),
		Category:  5,
		Status:    models.MatchStatusPending,
		Club:      &models.Club{ID: "club-1", Name: "Padel Arena"},
	}
	require.NoError(t, f.matchRepo.Create(context.Background(), match))
	for _, userID := range userIDs {
		require.NoError(t, f.playerRepo.Create(context.Background(), &models.MatchPlayer{
			MatchID: match.ID,
			UserID:  userID,
		}))
	}
	return match
}

func TestNotificationService_Subscribe_Validation(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)

	_, err := f.svc.Subscribe(context.Background(), "user-1", SubscribeInput{Endpoint: "https://push.example/ep"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	sub := f.subscribe(t, "user-1", "https://push.example/ep")
	assert.True(t, sub.IsActive)

	subs, err := f.svc.GetUserSubscriptions(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestNotificationService_Unsubscribe_UnknownEndpointIsNoop(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)

	err := f.svc.Unsubscribe(context.Background(), "user-1", "https://push.example/nowhere")
	assert.NoError(t, err)
}

func TestNotificationService_SendPush_NoSubscriptions(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)

	result, err := f.svc.SendPushNotification(context.Background(), "user-1", PushMessage{Title: "hi"})
	require.NoError(t, err)
	assert.Equal(t, SendResult{Sent: 0, Failed: 0}, result)
	assert.Zero(t, f.sender.sentCount())
}

func TestNotificationService_SendPush_DeactivatesGoneEndpoints(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	f.subscribe(t, "user-1", "https://push.example/alive")
	dead := f.subscribe(t, "user-1", "https://push.example/dead")
	f.sender.statuses["https://push.example/dead"] = 410

	result, err := f.svc.SendPushNotification(context.Background(), "user-1", PushMessage{Title: "hi"})
	require.NoError(t, err)
	assert.Equal(t, SendResult{Sent: 1, Failed: 1}, result)

	subs, err := f.subRepo.ListActiveByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.NotEqual(t, dead.ID, subs[0].ID)
}

func TestNotificationService_Sweep_RemindsOnce(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.subscribe(t, "user-1", "https://push.example/u1")
	match := f.seedUpcomingMatch(t, now, "user-1")

	require.NoError(t, f.svc.CheckUpcomingMatches(context.Background()))
	require.NoError(t, f.svc.CheckUpcomingMatches(context.Background()))

	// One delivery, one SENT row, despite two sweeps over the window.
	assert.Equal(t, 1, f.sender.sentCount())
	logs, err := f.logRepo.ListByUser(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.NotificationStatusSent, logs[0].Status)
	assert.Equal(t, models.NotificationMatchStartingSoon, logs[0].Type)
	require.NotNil(t, logs[0].MatchID)
	assert.Equal(t, match.ID, *logs[0].MatchID)
	assert.NotNil(t, logs[0].SentAt)
	assert.Contains(t, logs[0].Body, "Padel Arena")
}

func TestNotificationService_Sweep_LoadsRosterFromRepository(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.subscribe(t, "user-1", "https://push.example/u1")
	match := f.seedUpcomingMatch(t, now, "user-1")

	// The window query hands back the match without its roster; the
	// sweep must resolve players through the roster repository.
	windowed, err := f.matchRepo.ListStartingBetween(context.Background(),
		now.Add(60*time.Minute), now.Add(70*time.Minute), models.MatchStatusPending)
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	require.Equal(t, match.ID, windowed[0].ID)
	require.Nil(t, windowed[0].Players)

	require.NoError(t, f.svc.CheckUpcomingMatches(context.Background()))

	assert.Equal(t, 1, f.sender.sentCount())
	logs, err := f.logRepo.ListByUser(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.NotificationStatusSent, logs[0].Status)
}

func TestNotificationService_Sweep_RecordsFailureWithoutSubscriptions(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.seedUpcomingMatch(t, now, "user-1")

	require.NoError(t, f.svc.CheckUpcomingMatches(context.Background()))

	logs, err := f.logRepo.ListByUser(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.NotificationStatusFailed, logs[0].Status)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Equal(t, "no active subscriptions", *logs[0].ErrorMessage)

	// A failed attempt does not block a later retry.
	sent, err := f.logRepo.HasSent(context.Background(), "user-1", *logs[0].MatchID, models.NotificationMatchStartingSoon)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestNotificationService_Sweep_IgnoresMatchesOutsideWindow(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.subscribe(t, "user-1", "https://push.example/u1")

	tooSoon := &models.Match{
		ClubID:    "club-1",
		StartDate: now.Add(30 * time.Minute),
		EndDate:   now.Add(2 * time.Hour),
		Category:  5,
		Status:    models.MatchStatusPending,
	}
	require.NoError(t, f.matchRepo.Create(context.Background(), tooSoon))
	require.NoError(t, f.playerRepo.Create(context.Background(), &models.MatchPlayer{MatchID: tooSoon.ID, UserID: "user-1"}))

	require.NoError(t, f.svc.CheckUpcomingMatches(context.Background()))
	assert.Zero(t, f.sender.sentCount())
}

func TestNotificationService_SendPush_WithoutSender(t *testing.T) {
	t.Parallel()
	subRepo := newFakePushSubscriptionRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(subRepo, newFakeNotificationLogRepo(), newFakeMatchRepo(), newFakeMatchPlayerRepo(), nil, "", logger)

	_, err := svc.SendPushNotification(context.Background(), "user-1", PushMessage{Title: "hi"})
	assert.ErrorIs(t, err, ErrPushNotConfigured)
}

func TestNotificationService_Upsert_ReactivatesEndpoint(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	sub := f.subscribe(t, "user-1", "https://push.example/ep")

	require.NoError(t, f.subRepo.Deactivate(context.Background(), "user-1", sub.Endpoint))
	_, err := f.subRepo.ListActiveByUser(context.Background(), "user-1")
	require.NoError(t, err)

	again := f.subscribe(t, "user-1", "https://push.example/ep")
	assert.Equal(t, sub.ID, again.ID)
	assert.True(t, again.IsActive)
}

var _ repositories.PushSubscriptionRepository = (*fakePushSubscriptionRepo)(nil)
var _ repositories.NotificationLogRepository = (*fakeNotificationLogRepo)(nil)
