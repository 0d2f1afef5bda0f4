package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/repositories"
)

type CreateMatchInput struct {
	ClubID           string    `json:"club_id"`
	CourtID          *string   `json:"court_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Category         int       `json:"category"`
	Password         *string   `json:"password"`
	IsCourtScheduled bool      `json:"is_court_scheduled"`
}

type UpdateMatchInput struct {
	CourtID          *string             `json:"court_id"`
	StartDate        *time.Time          `json:"start_date"`
	EndDate          *time.Time          `json:"end_date"`
	Category         *int                `json:"category"`
	Status           *models.MatchStatus `json:"status"`
	Password         *string             `json:"password"`
	IsCourtScheduled *bool               `json:"is_court_scheduled"`
}

type MatchService interface {
	Create(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Match, error)
	Update(ctx context.Context, id string, input UpdateMatchInput) (*models.Match, error)
	Delete(ctx context.Context, id string) error

	AddPlayer(ctx context.Context, matchID, userID string, team *models.TeamAssignment) (*models.Match, error)
	RemovePlayer(ctx context.Context, matchID, userID string) (*models.Match, error)
	UpdatePlayerTeam(ctx context.Context, matchID, userID string, team models.TeamAssignment) (*models.Match, error)
	GetMatchPlayers(ctx context.Context, matchID string) ([]*models.MatchPlayer, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.MatchPlayerRepository
}

func NewMatchService(matchRepo repositories.MatchRepository, playerRepo repositories.MatchPlayerRepository) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.ClubID == "" {
		return nil, fmt.Errorf("%w: club id is required", ErrValidationFailed)
	}
	if input.Category < 1 {
		return nil, ErrMatchCategoryInvalid
	}

	match := &models.Match{
		ClubID:           input.ClubID,
		CourtID:          input.CourtID,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Category:         input.Category,
		Status:           models.MatchStatusPending,
		Password:         input.Password,
		IsCourtScheduled: input.IsCourtScheduled,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchClubInvalid) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return s.GetByID(ctx, match.ID)
}

// GetByID resolves the club and the full roster, each roster entry with
// its user.
func (s *matchService) GetByID(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}

	players, err := s.playerRepo.ListByMatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for match %s: %w", id, err)
	}
	match.Players = players
	return match, nil
}

func (s *matchService) List(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// ListByUser returns the matches a user participates in, de-duplicated,
// newest start date first.
func (s *matchService) ListByUser(ctx context.Context, userID string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for user %s: %w", userID, err)
	}
	return matches, nil
}

// Update merges the given fields onto the match. No transition graph is
// imposed on status changes and the schedule window is not re-validated.
func (s *matchService) Update(ctx context.Context, id string, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}

	if input.CourtID != nil {
		match.CourtID = input.CourtID
	}
	if input.StartDate != nil {
		match.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		match.EndDate = *input.EndDate
	}
	if input.Category != nil {
		match.Category = *input.Category
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrMatchStatusInvalid
		}
		match.Status = *input.Status
	}
	if input.Password != nil {
		match.Password = input.Password
	}
	if input.IsCourtScheduled != nil {
		match.IsCourtScheduled = *input.IsCourtScheduled
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %s: %w", id, err)
	}
	return s.GetByID(ctx, id)
}

func (s *matchService) Delete(ctx context.Context, id string) error {
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return nil
}

// AddPlayer inserts a roster entry for (matchID, userID). The duplicate
// check runs before the insert for a clean error, and the unique
// constraint backs it up against concurrent joins.
func (s *matchService) AddPlayer(ctx context.Context, matchID, userID string, team *models.TeamAssignment) (*models.Match, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}

	_, err := s.playerRepo.FindByMatchAndUser(ctx, matchID, userID)
	if err == nil {
		return nil, ErrPlayerAlreadyInMatch
	}
	if !errors.Is(err, repositories.ErrMatchPlayerNotFound) {
		return nil, fmt.Errorf("failed to check roster entry: %w", err)
	}

	assignment := models.TeamUnassigned
	if team != nil {
		if !team.Valid() {
			return nil, ErrTeamInvalid
		}
		assignment = *team
	}

	player := &models.MatchPlayer{
		MatchID: matchID,
		UserID:  userID,
		Team:    assignment,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchPlayerConflict):
			return nil, ErrPlayerAlreadyInMatch
		case errors.Is(err, repositories.ErrMatchPlayerUserInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to add player to match %s: %w", matchID, err)
	}

	return s.GetByID(ctx, matchID)
}

func (s *matchService) RemovePlayer(ctx context.Context, matchID, userID string) (*models.Match, error) {
	if err := s.playerRepo.Delete(ctx, matchID, userID); err != nil {
		if errors.Is(err, repositories.ErrMatchPlayerNotFound) {
			return nil, ErrPlayerNotInMatch
		}
		return nil, fmt.Errorf("failed to remove player from match %s: %w", matchID, err)
	}
	return s.GetByID(ctx, matchID)
}

func (s *matchService) UpdatePlayerTeam(ctx context.Context, matchID, userID string, team models.TeamAssignment) (*models.Match, error) {
	if !team.Valid() {
		return nil, ErrTeamInvalid
	}

	if err := s.playerRepo.UpdateTeam(ctx, matchID, userID, team); err != nil {
		if errors.Is(err, repositories.ErrMatchPlayerNotFound) {
			return nil, ErrPlayerNotInMatch
		}
		return nil, fmt.Errorf("failed to update team for match %s: %w", matchID, err)
	}
	return s.GetByID(ctx, matchID)
}

func (s *matchService) GetMatchPlayers(ctx context.Context, matchID string) ([]*models.MatchPlayer, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}

	players, err := s.playerRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for match %s: %w", matchID, err)
	}
	return players, nil
}
