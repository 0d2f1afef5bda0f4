package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/padelhub/padelhub-server/models"
)

type NotificationLogRepository interface {
	Create(ctx context.Context, log *models.NotificationLog) error
	// HasSent reports whether a SENT log of the given type already exists
	// for the (user, match) pair. This is the sweep's idempotency guard.
	HasSent(ctx context.Context, userID, matchID string, typ models.NotificationType) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.NotificationLog, error)
}

type postgresNotificationLogRepository struct {
	db *sql.DB
}

func NewPostgresNotificationLogRepository(db *sql.DB) NotificationLogRepository {
	return &postgresNotificationLogRepository{db: db}
}

func (r *postgresNotificationLogRepository) Create(ctx context.Context, log *models.NotificationLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Status == "" {
		log.Status = models.NotificationStatusPending
	}
	query := `
		INSERT INTO notification_logs
			(id, user_id, match_id, type, status, title, body, data, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		log.ID,
		log.UserID,
		log.MatchID,
		log.Type,
		log.Status,
		log.Title,
		log.Body,
		nullableJSON(log.Data),
		log.ErrorMessage,
		log.SentAt,
	).Scan(&log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification log: %w", err)
	}
	return nil
}

func (r *postgresNotificationLogRepository) HasSent(ctx context.Context, userID, matchID string, typ models.NotificationType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notification_logs
			WHERE user_id = $1 AND match_id = $2 AND type = $3 AND status = $4
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, matchID, typ, models.NotificationStatusSent).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check sent notification: %w", err)
	}
	return exists, nil
}

func (r *postgresNotificationLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.NotificationLog, error) {
	query := `
		SELECT id, user_id, match_id, type, status, title, body, data,
		       error_message, created_at, sent_at
		FROM notification_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification logs for user %s: %w", userID, err)
	}
	defer rows.Close()

	logs := make([]*models.NotificationLog, 0)
	for rows.Next() {
		log := &models.NotificationLog{}
		var data sql.NullString
		if scanErr := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.MatchID,
			&log.Type,
			&log.Status,
			&log.Title,
			&log.Body,
			&data,
			&log.ErrorMessage,
			&log.CreatedAt,
			&log.SentAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan notification log row: %w", scanErr)
		}
		if data.Valid {
			log.Data = []byte(data.String)
		}
		logs = append(logs, log)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during notification log rows iteration: %w", err)
	}
	return logs, nil
}

func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
