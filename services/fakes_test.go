package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/repositories"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	next  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.next++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.next)
	}
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmailOrGoogleID(_ context.Context, email, googleID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var byGoogleID *models.User
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
		if user.GoogleID != nil && *user.GoogleID == googleID {
			byGoogleID = user
		}
	}
	if byGoogleID != nil {
		copied := *byGoogleID
		return &copied, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) LinkGoogleID(_ context.Context, id, googleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.GoogleID = &googleID
	user.IsUserVerified = true
	return nil
}

func (r *fakeUserRepo) UpdateProfilePictureURL(_ context.Context, id string, url *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.ProfilePictureURL = url
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
	next    int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[string]*models.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	if match.ID == "" {
		match.ID = fmt.Sprintf("match-%d", r.next)
	}
	match.CreatedAt = time.Now()
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) List(_ context.Context) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := make([]*models.Match, 0, len(r.matches))
	for _, match := range r.matches {
		copied := *match
		matches = append(matches, &copied)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *fakeMatchRepo) ListByUser(_ context.Context, _ string) ([]*models.Match, error) {
	return nil, nil
}

func (r *fakeMatchRepo) ListStartingBetween(_ context.Context, from, to time.Time, status models.MatchStatus) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := make([]*models.Match, 0)
	for _, match := range r.matches {
		if match.Status != status {
			continue
		}
		if match.StartDate.Before(from) || !match.StartDate.Before(to) {
			continue
		}
		copied := *match
		matches = append(matches, &copied)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].StartDate.Before(matches[j].StartDate) })
	return matches, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

type fakeMatchPlayerRepo struct {
	mu      sync.Mutex
	players []*models.MatchPlayer
	next    int
}

func newFakeMatchPlayerRepo() *fakeMatchPlayerRepo {
	return &fakeMatchPlayerRepo{}
}

func (r *fakeMatchPlayerRepo) Create(_ context.Context, player *models.MatchPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.players {
		if existing.MatchID == player.MatchID && existing.UserID == player.UserID {
			return repositories.ErrMatchPlayerConflict
		}
	}
	r.next++
	if player.ID == "" {
		player.ID = fmt.Sprintf("player-%d", r.next)
	}
	player.JoinedAt = time.Now()
	copied := *player
	r.players = append(r.players, &copied)
	return nil
}

func (r *fakeMatchPlayerRepo) FindByMatchAndUser(_ context.Context, matchID, userID string) (*models.MatchPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range r.players {
		if player.MatchID == matchID && player.UserID == userID {
			copied := *player
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchPlayerNotFound
}

func (r *fakeMatchPlayerRepo) ListByMatch(_ context.Context, matchID string) ([]*models.MatchPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]*models.MatchPlayer, 0)
	for _, player := range r.players {
		if player.MatchID == matchID {
			copied := *player
			players = append(players, &copied)
		}
	}
	return players, nil
}

func (r *fakeMatchPlayerRepo) UpdateTeam(_ context.Context, matchID, userID string, team models.TeamAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range r.players {
		if player.MatchID == matchID && player.UserID == userID {
			player.Team = team
			return nil
		}
	}
	return repositories.ErrMatchPlayerNotFound
}

func (r *fakeMatchPlayerRepo) Delete(_ context.Context, matchID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, player := range r.players {
		if player.MatchID == matchID && player.UserID == userID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMatchPlayerNotFound
}

type fakeMatchMessageRepo struct {
	mu       sync.Mutex
	messages []*models.MatchMessage
	next     int
}

func newFakeMatchMessageRepo() *fakeMatchMessageRepo {
	return &fakeMatchMessageRepo{}
}

func (r *fakeMatchMessageRepo) Create(_ context.Context, message *models.MatchMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", r.next)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMatchMessageRepo) GetByID(_ context.Context, id string) (*models.MatchMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages {
		if message.ID == id {
			copied := *message
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchMessageNotFound
}

func (r *fakeMatchMessageRepo) ListByMatch(_ context.Context, matchID string, limit int, before *time.Time) ([]*models.MatchMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]*models.MatchMessage, 0)
	for _, message := range r.messages {
		if message.MatchID != matchID {
			continue
		}
		if before != nil && !message.CreatedAt.Before(*before) {
			continue
		}
		copied := *message
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeMatchMessageRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, message := range r.messages {
		if message.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMatchMessageNotFound
}

type fakePushSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*models.PushSubscription
	next int
}

func newFakePushSubscriptionRepo() *fakePushSubscriptionRepo {
	return &fakePushSubscriptionRepo{subs: make(map[string]*models.PushSubscription)}
}

func (r *fakePushSubscriptionRepo) Upsert(_ context.Context, sub *models.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.UserID == sub.UserID && existing.Endpoint == sub.Endpoint {
			existing.P256DH = sub.P256DH
			existing.Auth = sub.Auth
			existing.UserAgent = sub.UserAgent
			existing.IsActive = true
			*sub = *existing
			return nil
		}
	}
	r.next++
	if sub.ID == "" {
		sub.ID = fmt.Sprintf("sub-%d", r.next)
	}
	sub.IsActive = true
	sub.CreatedAt = time.Now()
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *fakePushSubscriptionRepo) ListActiveByUser(_ context.Context, userID string) ([]*models.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := make([]*models.PushSubscription, 0)
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.IsActive {
			copied := *sub
			subs = append(subs, &copied)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (r *fakePushSubscriptionRepo) Deactivate(_ context.Context, userID, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.Endpoint == endpoint {
			sub.IsActive = false
			return nil
		}
	}
	return repositories.ErrPushSubscriptionNotFound
}

func (r *fakePushSubscriptionRepo) DeactivateByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return repositories.ErrPushSubscriptionNotFound
	}
	sub.IsActive = false
	return nil
}

type fakeNotificationLogRepo struct {
	mu   sync.Mutex
	logs []*models.NotificationLog
	next int
}

func newFakeNotificationLogRepo() *fakeNotificationLogRepo {
	return &fakeNotificationLogRepo{}
}

func (r *fakeNotificationLogRepo) Create(_ context.Context, log *models.NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	if log.ID == "" {
		log.ID = fmt.Sprintf("log-%d", r.next)
	}
	if log.Status == "" {
		log.Status = models.NotificationStatusPending
	}
	log.CreatedAt = time.Now()
	copied := *log
	r.logs = append(r.logs, &copied)
	return nil
}

func (r *fakeNotificationLogRepo) HasSent(_ context.Context, userID, matchID string, typ models.NotificationType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, log := range r.logs {
		if log.UserID == userID && log.MatchID != nil && *log.MatchID == matchID &&
			log.Type == typ && log.Status == models.NotificationStatusSent {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationLogRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.NotificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logs := make([]*models.NotificationLog, 0)
	for _, log := range r.logs {
		if log.UserID == userID {
			copied := *log
			logs = append(logs, &copied)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// fakePushSender records deliveries and returns a configurable status
// per endpoint.
type fakePushSender struct {
	mu       sync.Mutex
	statuses map[string]int
	sent     []string
}

func newFakePushSender() *fakePushSender {
	return &fakePushSender{statuses: make(map[string]int)}
}

func (s *fakePushSender) Send(_ context.Context, sub *models.PushSubscription, _ []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[sub.Endpoint]
	if !ok {
		status = 201
	}
	if status >= 400 {
		return status, fmt.Errorf("push endpoint returned status %d", status)
	}
	s.sent = append(s.sent, sub.Endpoint)
	return status, nil
}

func (s *fakePushSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
