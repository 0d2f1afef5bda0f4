package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/padelhub/padelhub-server/models"
)

var ErrMatchMessageNotFound = errors.New("message not found")

type MatchMessageRepository interface {
	Create(ctx context.Context, message *models.MatchMessage) error
	GetByID(ctx context.Context, id string) (*models.MatchMessage, error)
	// ListByMatch returns up to limit messages newest first, optionally
	// restricted to messages created strictly before the given instant.
	ListByMatch(ctx context.Context, matchID string, limit int, before *time.Time) ([]*models.MatchMessage, error)
	Delete(ctx context.Context, id string) error
}

type postgresMatchMessageRepository struct {
	db *sql.DB
}

func NewPostgresMatchMessageRepository(db *sql.DB) MatchMessageRepository {
	return &postgresMatchMessageRepository{db: db}
}

func (r *postgresMatchMessageRepository) Create(ctx context.Context, message *models.MatchMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	query := `
		INSERT INTO match_messages (id, match_id, user_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		message.ID,
		message.MatchID,
		message.UserID,
		message.Message,
	).Scan(&message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match message: %w", err)
	}
	return nil
}

func (r *postgresMatchMessageRepository) GetByID(ctx context.Context, id string) (*models.MatchMessage, error) {
	query := `
		SELECT id, match_id, user_id, message, created_at
		FROM match_messages
		WHERE id = $1`

	message := &models.MatchMessage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&message.ID,
		&message.MatchID,
		&message.UserID,
		&message.Message,
		&message.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchMessageNotFound
		}
		return nil, fmt.Errorf("failed to scan message by id %s: %w", id, err)
	}
	return message, nil
}

func (r *postgresMatchMessageRepository) ListByMatch(ctx context.Context, matchID string, limit int, before *time.Time) ([]*models.MatchMessage, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT mm.id, mm.match_id, mm.user_id, mm.message, mm.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.google_id, u.phone,
		       u.is_user_verified, u.profile_picture_url, u.category,
		       u.matches_played, u.city, u.side_preference, u.created_at, u.updated_at
		FROM match_messages mm
		JOIN users u ON u.id = mm.user_id
		WHERE mm.match_id = $1`)

	args := []interface{}{matchID}
	placeholderIndex := 2

	if before != nil {
		queryBuilder.WriteString(" AND mm.created_at < $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *before)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY mm.created_at DESC LIMIT $")
	queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for match %s: %w", matchID, err)
	}
	defer rows.Close()

	messages := make([]*models.MatchMessage, 0)
	for rows.Next() {
		message := &models.MatchMessage{}
		user := &models.User{}
		if scanErr := rows.Scan(
			&message.ID,
			&message.MatchID,
			&message.UserID,
			&message.Message,
			&message.CreatedAt,
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
			return nil, fmt.Errorf("failed to scan message row: %w", scanErr)
		}
		message.User = user
		messages = append(messages, message)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during message rows iteration: %w", err)
	}
	return messages, nil
}

func (r *postgresMatchMessageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM match_messages WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchMessageNotFound)
}
