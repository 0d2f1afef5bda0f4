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
	ErrClubNotFound = errors.New("club not found")
	// Returned when a club is still referenced by matches; deletion is
	// blocked by the foreign key, not by the service layer.
	ErrClubReferenced = errors.New("club is referenced by existing matches")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id string) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	UpdatePictureURL(ctx context.Context, id string, url *string) error
	Delete(ctx context.Context, id string) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

const clubColumns = `
	id, name, address, picture_url, phone, email, website, app_url, pix_key,
	created_at, updated_at`

func scanClub(row interface{ Scan(...interface{}) error }) (*models.Club, error) {
	club := &models.Club{}
	err := row.Scan(
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
	return club, nil
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	if club.ID == "" {
		club.ID = uuid.New().String()
	}
	query := `
		INSERT INTO clubs
			(id, name, address, picture_url, phone, email, website, app_url, pix_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		club.ID,
		club.Name,
		club.Address,
		club.PictureURL,
		club.Phone,
		club.Email,
		club.Website,
		club.AppURL,
		club.PixKey,
	).Scan(&club.CreatedAt, &club.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert club: %w", err)
	}
	return nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id string) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1`

	club, err := scanClub(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club by id %s: %w", id, err)
	}
	return club, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0)
	for rows.Next() {
		club, scanErr := scanClub(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan club row: %w", scanErr)
		}
		clubs = append(clubs, club)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during club rows iteration: %w", err)
	}
	return clubs, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `
		UPDATE clubs
		SET name = $1, address = $2, picture_url = $3, phone = $4, email = $5,
		    website = $6, app_url = $7, pix_key = $8, updated_at = now()
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		club.Name,
		club.Address,
		club.PictureURL,
		club.Phone,
		club.Email,
		club.Website,
		club.AppURL,
		club.PixKey,
		club.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update club %s: %w", club.ID, err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) UpdatePictureURL(ctx context.Context, id string, url *string) error {
	query := `UPDATE clubs SET picture_url = $1, updated_at = now() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, url, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM clubs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrClubReferenced
		}
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}
