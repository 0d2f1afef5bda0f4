package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/padelhub/padelhub-server/models"
)

var (
	ErrMatchPlayerNotFound = errors.New("player not found in this match")
	// Raised both by the pre-insert existence check in the service and by
	// the unique constraint, so concurrent duplicate joins cannot slip
	// through the check-then-insert window.
	ErrMatchPlayerConflict    = errors.New("player is already in this match")
	ErrMatchPlayerUserInvalid = errors.New("roster entry references an unknown user")
)

type MatchPlayerRepository interface {
	Create(ctx context.Context, player *models.MatchPlayer) error
	FindByMatchAndUser(ctx context.Context, matchID, userID string) (*models.MatchPlayer, error)
	ListByMatch(ctx context.Context, matchID string) ([]*models.MatchPlayer, error)
	UpdateTeam(ctx context.Context, matchID, userID string, team models.TeamAssignment) error
	Delete(ctx context.Context, matchID, userID string) error
}

type postgresMatchPlayerRepository struct {
	db *sql.DB
}

func NewPostgresMatchPlayerRepository(db *sql.DB) MatchPlayerRepository {
	return &postgresMatchPlayerRepository{db: db}
}

func (r *postgresMatchPlayerRepository) Create(ctx context.Context, player *models.MatchPlayer) error {
	if player.ID == "" {
		player.ID = uuid.New().String()
	}
	if player.Team == "" {
		player.Team = models.TeamUnassigned
	}
	query := `
		INSERT INTO match_players (id, match_id, user_id, team)
		VALUES ($1, $2, $3, $4)
		RETURNING joined_at`

	err := r.db.QueryRowContext(ctx, query,
		player.ID,
		player.MatchID,
		player.UserID,
		player.Team,
	).Scan(&player.JoinedAt)

	return handleMatchPlayerError(err)
}

func (r *postgresMatchPlayerRepository) FindByMatchAndUser(ctx context.Context, matchID, userID string) (*models.MatchPlayer, error) {
	query := `
		SELECT id, match_id, user_id, team, joined_at
		FROM match_players
		WHERE match_id = $1 AND user_id = $2`

	player := &models.MatchPlayer{}
	err := r.db.QueryRowContext(ctx, query, matchID, userID).Scan(
		&player.ID,
		&player.MatchID,
		&player.UserID,
		&player.Team,
		&player.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan roster entry: %w", err)
	}
	return player, nil
}

// ListByMatch returns roster entries in join order with each user resolved.
func (r *postgresMatchPlayerRepository) ListByMatch(ctx context.Context, matchID string) ([]*models.MatchPlayer, error) {
	query := `
		SELECT mp.id, mp.match_id, mp.user_id, mp.team, mp.joined_at,
		       u.id, u.first_name, u.last_name, u.email, u.google_id, u.phone,
		       u.is_user_verified, u.profile_picture_url, u.category,
		       u.matches_played, u.city, u.side_preference, u.created_at, u.updated_at
		FROM match_players mp
		JOIN users u ON u.id = mp.user_id
		WHERE mp.match_id = $1
		ORDER BY mp.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for match %s: %w", matchID, err)
	}
	defer rows.Close()

	players := make([]*models.MatchPlayer, 0)
	for rows.Next() {
		player := &models.MatchPlayer{}
		user := &models.User{}
		if scanErr := rows.Scan(
			&player.ID,
			&player.MatchID,
			&player.UserID,
			&player.Team,
			&player.JoinedAt,
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.GoogleID,
			&user.Phone,
			&user.IsUserVerified,
			&user.ProfilePictureURL,
			&user.Category,
			&user.MatchesPlayed,
			&user.City,
			&user.SidePreference,
			&user.CreatedAt,
			&user.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		player.User = user
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresMatchPlayerRepository) UpdateTeam(ctx context.Context, matchID, userID string, team models.TeamAssignment) error {
	query := `UPDATE match_players SET team = $1 WHERE match_id = $2 AND user_id = $3`

	result, err := r.db.ExecContext(ctx, query, team, matchID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchPlayerNotFound)
}

func (r *postgresMatchPlayerRepository) Delete(ctx context.Context, matchID, userID string) error {
	query := `DELETE FROM match_players WHERE match_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, matchID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchPlayerNotFound)
}

func handleMatchPlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "match_players_match_id_user_id_key":
			return ErrMatchPlayerConflict
		case "match_players_match_id_fkey":
			return ErrMatchNotFound
		case "match_players_user_id_fkey":
			return ErrMatchPlayerUserInvalid
		}
	}
	return err
}
