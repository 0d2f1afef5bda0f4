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

const defaultUserCategory = 8

type CreateUserInput struct {
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	Email          string                 `json:"email"`
	Phone          *string                `json:"phone"`
	City           *string                `json:"city"`
	Category       *int                   `json:"category"`
	SidePreference *models.SidePreference `json:"side_preference"`
}

type UpdateUserInput struct {
	FirstName      *string                `json:"first_name"`
	LastName       *string                `json:"last_name"`
	Email          *string                `json:"email"`
	Phone          *string                `json:"phone"`
	City           *string                `json:"city"`
	Category       *int                   `json:"category"`
	SidePreference *models.SidePreference `json:"side_preference"`
}

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
	UploadProfilePicture(ctx context.Context, id string, contentType string, reader io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if input.FirstName == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: first name and email are required", ErrValidationFailed)
	}
	if input.SidePreference != nil && *input.SidePreference != models.SideLeft && *input.SidePreference != models.SideRight {
		return nil, fmt.Errorf("%w: side preference must be left or right", ErrValidationFailed)
	}

	category := defaultUserCategory
	if input.Category != nil {
		category = *input.Category
	}

	user := &models.User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		City:           input.City,
		Category:       category,
		SidePreference: input.SidePreference,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, fmt.Errorf("%w: first name must not be empty", ErrValidationFailed)
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		if *input.Email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", ErrValidationFailed)
		}
		user.Email = *input.Email
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.City != nil {
		user.City = input.City
	}
	if input.Category != nil {
		user.Category = *input.Category
	}
	if input.SidePreference != nil {
		if *input.SidePreference != models.SideLeft && *input.SidePreference != models.SideRight {
			return nil, fmt.Errorf("%w: side preference must be left or right", ErrValidationFailed)
		}
		user.SidePreference = input.SidePreference
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

func (s *userService) UploadProfilePicture(ctx context.Context, id string, contentType string, reader io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("users/%s/profile%s", user.ID, extensionForContentType(contentType))
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	if err := s.userRepo.UpdateProfilePictureURL(ctx, user.ID, &result.Location); err != nil {
		return nil, fmt.Errorf("failed to store profile picture url: %w", err)
	}
	user.ProfilePictureURL = &result.Location
	return user, nil
}
