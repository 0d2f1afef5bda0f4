package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/padelhub/padelhub-server/models"
)

var ErrPushSubscriptionNotFound = errors.New("push subscription not found")

type PushSubscriptionRepository interface {
	// Upsert inserts the subscription or, when (user_id, endpoint) already
	// exists, refreshes its keys and reactivates it.
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	ListActiveByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error)
	Deactivate(ctx context.Context, userID, endpoint string) error
	DeactivateByID(ctx context.Context, id string) error
}

type postgresPushSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresPushSubscriptionRepository(db *sql.DB) PushSubscriptionRepository {
	return &postgresPushSubscriptionRepository{db: db}
}

func (r *postgresPushSubscriptionRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, is_active, user_agent)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		ON CONFLICT (user_id, endpoint) DO UPDATE
		SET p256dh = EXCLUDED.p256dh,
		    auth = EXCLUDED.auth,
		    user_agent = EXCLUDED.user_agent,
		    is_active = TRUE,
		    updated_at = now()
		RETURNING id, is_active, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		sub.ID,
		sub.UserID,
		sub.Endpoint,
		sub.P256DH,
		sub.Auth,
		sub.UserAgent,
	).Scan(&sub.ID, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

func (r *postgresPushSubscriptionRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh, auth, is_active, user_agent, created_at, updated_at
		FROM push_subscriptions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query push subscriptions for user %s: %w", userID, err)
	}
	defer rows.Close()

	subs := make([]*models.PushSubscription, 0)
	for rows.Next() {
		sub := &models.PushSubscription{}
		if scanErr := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.Endpoint,
			&sub.P256DH,
			&sub.Auth,
			&sub.IsActive,
			&sub.UserAgent,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan push subscription row: %w", scanErr)
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during push subscription rows iteration: %w", err)
	}
	return subs, nil
}

func (r *postgresPushSubscriptionRepository) Deactivate(ctx context.Context, userID, endpoint string) error {
	query := `
		UPDATE push_subscriptions
		SET is_active = FALSE, updated_at = now()
		WHERE user_id = $1 AND endpoint = $2`

	result, err := r.db.ExecContext(ctx, query, userID, endpoint)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPushSubscriptionNotFound)
}

func (r *postgresPushSubscriptionRepository) DeactivateByID(ctx context.Context, id string) error {
	query := `
		UPDATE push_subscriptions
		SET is_active = FALSE, updated_at = now()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPushSubscriptionNotFound)
}
