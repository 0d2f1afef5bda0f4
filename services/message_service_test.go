package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padelhub/padelhub-server/models"
)

func newTestMessageService(t *testing.T) (MessageService, *fakeMatchMessageRepo, *fakeMatchRepo) {
	t.Helper()
	messageRepo := newFakeMatchMessageRepo()
	matchRepo := newFakeMatchRepo()
	return NewMessageService(messageRepo, matchRepo, nil), messageRepo, matchRepo
}

func seedMessages(t *testing.T, repo *fakeMatchMessageRepo, matchID string, n int) []*models.MatchMessage {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]*models.MatchMessage, 0, n)
	for i := 0; i < n; i++ {
		message := &models.MatchMessage{
			MatchID:   matchID,
			UserID:    "user-1",
			Message:   "hello",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), message))
		messages = append(messages, message)
	}
	return messages
}

func TestMessageService_Create_Validation(t *testing.T) {
	t.Parallel()
	svc, _, matchRepo := newTestMessageService(t)
	match := seedMatch(t, matchRepo)

	_, err := svc.Create(context.Background(), match.ID, "user-1", "")
	assert.ErrorIs(t, err, ErrMessageEmpty)

	_, err = svc.Create(context.Background(), match.ID, "user-1", strings.Repeat("x", 1001))
	assert.ErrorIs(t, err, ErrMessageTooLong)

	_, err = svc.Create(context.Background(), "missing", "user-1", "hi")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	message, err := svc.Create(context.Background(), match.ID, "user-1", strings.Repeat("x", 1000))
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
}

func TestMessageService_Create_LengthCountsCharacters(t *testing.T) {
	t.Parallel()
	svc, _, matchRepo := newTestMessageService(t)
	match := seedMatch(t, matchRepo)

	// 1000 two-byte characters must pass the limit.
	message, err := svc.Create(context.Background(), match.ID, "user-1", strings.Repeat("ã", 1000))
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)

	_, err = svc.Create(context.Background(), match.ID, "user-1", strings.Repeat("ã", 1001))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestMessageService_ListByMatch_PagesBackwards(t *testing.T) {
	t.Parallel()
	svc, messageRepo, matchRepo := newTestMessageService(t)
	match := seedMatch(t, matchRepo)
	seeded := seedMessages(t, messageRepo, match.ID, 5)

	// Newest page first, in chronological order.
	page, err := svc.ListByMatch(context.Background(), match.ID, 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, seeded[3].ID, page[0].ID)
	assert.Equal(t, seeded[4].ID, page[1].ID)

	// The next page is everything strictly older than the page head.
	page, err = svc.ListByMatch(context.Background(), match.ID, 2, seeded[3].ID)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, seeded[1].ID, page[0].ID)
	assert.Equal(t, seeded[2].ID, page[1].ID)
}

func TestMessageService_ListByMatch_UnknownCursorIgnored(t *testing.T) {
	t.Parallel()
	svc, messageRepo, matchRepo := newTestMessageService(t)
	match := seedMatch(t, matchRepo)
	seeded := seedMessages(t, messageRepo, match.ID, 3)

	page, err := svc.ListByMatch(context.Background(), match.ID, 10, "no-such-message")
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, seeded[0].ID, page[0].ID)
	assert.Equal(t, seeded[2].ID, page[2].ID)
}

func TestMessageService_Delete_OnlyForAuthor(t *testing.T) {
	t.Parallel()
	svc, messageRepo, matchRepo := newTestMessageService(t)
	match := seedMatch(t, matchRepo)

	message, err := svc.Create(context.Background(), match.ID, "user-1", "mine")
	require.NoError(t, err)

	// A foreign message and a missing message look identical to callers.
	err = svc.Delete(context.Background(), message.ID, "user-2")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	err = svc.Delete(context.Background(), "no-such-message", "user-1")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	err = svc.Delete(context.Background(), message.ID, "user-1")
	require.NoError(t, err)

	_, err = messageRepo.GetByID(context.Background(), message.ID)
	assert.Error(t, err)
}
