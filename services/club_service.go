package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/repositories"
	"github.com/padelhub/padelhub-server/storage"
)

const maxClubNameLength = 200

type CreateClubInput struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
	AppURL  *string `json:"app_url"`
	PixKey  *string `json:"pix_key"`
}

type UpdateClubInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
	AppURL  *string `json:"app_url"`
	PixKey  *string `json:"pix_key"`
}

type ClubService interface {
	Create(ctx context.Context, input CreateClubInput) (*models.Club, error)
	GetByID(ctx context.Context, id string) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	Update(ctx context.Context, id string, input UpdateClubInput) (*models.Club, error)
	Delete(ctx context.Context, id string) error
	UploadPicture(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Club, error)
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader) ClubService {
	return &clubService{
		clubRepo: clubRepo,
		uploader: uploader,
	}
}

func (s *clubService) Create(ctx context.Context, input CreateClubInput) (*models.Club, error) {
	if input.Name == "" {
		return nil, ErrClubNameRequired
	}
	if len(input.Name) > maxClubNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrValidationFailed, maxClubNameLength)
	}
	if input.Address == "" {
		return nil, ErrClubAddressRequired
	}

	club := &models.Club{
		Name:    input.Name,
		Address: input.Address,
		Phone:   input.Phone,
		Email:   input.Email,
		Website: input.Website,
		AppURL:  input.AppURL,
		PixKey:  input.PixKey,
	}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetByID(ctx context.Context, id string) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %s: %w", id, err)
	}
	return club, nil
}

func (s *clubService) List(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	return clubs, nil
}

func (s *clubService) Update(ctx context.Context, id string, input UpdateClubInput) (*models.Club, error) {
	club, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrClubNameRequired
		}
		if len(*input.Name) > maxClubNameLength {
			return nil, fmt.Errorf("%w: name exceeds %d characters", ErrValidationFailed, maxClubNameLength)
		}
		club.Name = *input.Name
	}
	if input.Address != nil {
		if *input.Address == "" {
			return nil, ErrClubAddressRequired
		}
		club.Address = *input.Address
	}
	if input.Phone != nil {
		club.Phone = input.Phone
	}
	if input.Email != nil {
		club.Email = input.Email
	}
	if input.Website != nil {
		club.Website = input.Website
	}
	if input.AppURL != nil {
		club.AppURL = input.AppURL
	}
	if input.PixKey != nil {
		club.PixKey = input.PixKey
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to update club %s: %w", id, err)
	}
	return club, nil
}

// Delete does not guard against matches still referencing the club; the
// foreign key rejects the delete and the error surfaces as a conflict.
func (s *clubService) Delete(ctx context.Context, id string) error {
	err := s.clubRepo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrClubNotFound):
			return ErrClubNotFound
		case errors.Is(err, repositories.ErrClubReferenced):
			return ErrClubReferenced
		}
		return fmt.Errorf("failed to delete club %s: %w", id, err)
	}
	return nil
}

func (s *clubService) UploadPicture(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Club, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}

	club, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("clubs/%s/picture%s", club.ID, extensionForContentType(contentType))
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload club picture: %w", err)
	}

	if err := s.clubRepo.UpdatePictureURL(ctx, club.ID, &result.Location); err != nil {
		return nil, fmt.Errorf("failed to store club picture url: %w", err)
	}
	club.PictureURL = &result.Location
	return club, nil
}

func extensionForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
