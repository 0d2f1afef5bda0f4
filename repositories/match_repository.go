package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/padelhub/padelhub-server/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchClubInvalid = errors.New("match references an unknown club")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Match, error)
	ListStartingBetween(ctx context.Context, from, to time.Time, status models.MatchStatus) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

// Every match query joins the owning club; the API always embeds it.
const matchSelect = `
	SELECT m.id, m.club_id, m.court_id, m.start_date, m.end_date, m.category,
	       m.status, m.password, m.is_court_scheduled, m.created_at, m.updated_at,
	       c.id, c.name, c.address, c.picture_url, c.phone, c.email, c.website,
	       c.app_url, c.pix_key, c.created_at, c.updated_at
	FROM matches m
	JOIN clubs c ON c.id = m.club_id`

func scanMatchWithClub(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	club := &models.Club{}
	err := row.Scan(
		&match.ID,
		&match.ClubID,
		&match.CourtID,
		&match.StartDate,
		&match.EndDate,
		&match.Category,
		&match.Status,
		&match.Password,
		&match.IsCourtScheduled,
		&match.CreatedAt,
		&match.UpdatedAt,
		&club.ID,
		&club.Name,
		&club.Address,
		&club.PictureURL,
		&club.Phone,
		&club.Email,
		&club.Website,
		&club.AppURL,
		&club.PixKey,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	match.Club = club
	return match, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.Status == "" {
		match.Status = models.MatchStatusPending
	}
	query := `
		INSERT INTO matches
			(id, club_id, court_id, start_date, end_date, category, status,
			 password, is_court_scheduled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		match.ID,
		match.ClubID,
		match.CourtID,
		match.StartDate,
		match.EndDate,
		match.Category,
		match.Status,
		match.Password,
		match.IsCourtScheduled,
	).Scan(&match.CreatedAt, &match.UpdatedAt)

	return handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := matchSelect + ` WHERE m.id = $1`

	match, err := scanMatchWithClub(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]*models.Match, error) {
	query := matchSelect + ` ORDER BY m.start_date DESC`
	return r.queryMatches(ctx, query)
}

// ListByUser returns the matches a user is rostered in, newest start first.
// DISTINCT keeps a match listed once even if duplicate roster rows exist.
func (r *postgresMatchRepository) ListByUser(ctx context.Context, userID string) ([]*models.Match, error) {
	query := `
	SELECT DISTINCT m.id, m.club_id, m.court_id, m.start_date, m.end_date, m.category,
	       m.status, m.password, m.is_court_scheduled, m.created_at, m.updated_at,
	       c.id, c.name, c.address, c.picture_url, c.phone, c.email, c.website,
	       c.app_url, c.pix_key, c.created_at, c.updated_at
	FROM matches m
	JOIN clubs c ON c.id = m.club_id
	JOIN match_players mp ON mp.match_id = m.id
	WHERE mp.user_id = $1
	ORDER BY m.start_date DESC`
	return r.queryMatches(ctx, query, userID)
}

func (r *postgresMatchRepository) ListStartingBetween(ctx context.Context, from, to time.Time, status models.MatchStatus) ([]*models.Match, error) {
	query := matchSelect + `
	WHERE m.start_date >= $1 AND m.start_date < $2 AND m.status = $3
	ORDER BY m.start_date ASC`
	return r.queryMatches(ctx, query, from, to, status)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatchWithClub(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET club_id = $1, court_id = $2, start_date = $3, end_date = $4,
		    category = $5, status = $6, password = $7, is_court_scheduled = $8,
		    updated_at = now()
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		match.ClubID,
		match.CourtID,
		match.StartDate,
		match.EndDate,
		match.Category,
		match.Status,
		match.Password,
		match.IsCourtScheduled,
		match.ID,
	)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// Delete removes the match; roster entries, messages and notification
// logs go with it via ON DELETE CASCADE.
func (r *postgresMatchRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM matches WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_club_id_fkey":
			return ErrMatchClubInvalid
		}
	}
	return err
}
