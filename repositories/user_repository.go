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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserGoogleIDConflict = errors.New("google account is already linked to another user")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	LinkGoogleID(ctx context.Context, id, googleID string) error
	UpdateProfilePictureURL(ctx context.Context, id string, url *string) error
	Delete(ctx context.Context, id string) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, first_name, last_name, email, google_id, phone, is_user_verified,
	profile_picture_url, category, matches_played, city, side_preference,
	created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
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
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	query := `
		INSERT INTO users
			(id, first_name, last_name, email, google_id, phone, is_user_verified,
			 profile_picture_url, category, matches_played, city, side_preference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.GoogleID,
		user.Phone,
		user.IsUserVerified,
		user.ProfilePictureURL,
		user.Category,
		user.MatchesPlayed,
		user.City,
		user.SidePreference,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	return handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by id %s: %w", id, err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by email: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*models.User, error) {
	// Email match wins when both exist; mirrors the lookup order used
	// during sign-in so an email account gets linked, not duplicated.
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR google_id = $2
		ORDER BY (email = $1) DESC
		LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email, googleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by email or google id: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", scanErr)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during user rows iteration: %w", err)
	}
	return users, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    profile_picture_url = $5, category = $6, matches_played = $7,
		    city = $8, side_preference = $9, is_user_verified = $10,
		    updated_at = now()
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.ProfilePictureURL,
		user.Category,
		user.MatchesPlayed,
		user.City,
		user.SidePreference,
		user.IsUserVerified,
		user.ID,
	)
	if err != nil {
		return handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) LinkGoogleID(ctx context.Context, id, googleID string) error {
	// Linking an external identity also marks the account verified.
	query := `
		UPDATE users
		SET google_id = $1, is_user_verified = TRUE, updated_at = now()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, googleID, id)
	if err != nil {
		return handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateProfilePictureURL(ctx context.Context, id string, url *string) error {
	query := `UPDATE users SET profile_picture_url = $1, updated_at = now() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, url, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrUserEmailConflict
		case "users_google_id_key":
			return ErrUserGoogleIDConflict
		}
	}
	return err
}
