package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	// Not found
	ErrUserNotFound     = errors.New("user not found")
	ErrClubNotFound     = errors.New("club not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrPlayerNotInMatch = errors.New("player not found in this match")
	// Covers both a missing message and someone else's message, so a
	// delete probe cannot reveal whether the message exists.
	ErrMessageNotFound = errors.New("message not found")

	// Conflicts
	ErrPlayerAlreadyInMatch = errors.New("player is already in this match")
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrClubReferenced       = errors.New("club is referenced by existing matches")

	// Validation and business rules
	ErrValidationFailed      = errors.New("validation failed")
	ErrClubNameRequired      = errors.New("club name is required")
	ErrClubAddressRequired   = errors.New("club address is required")
	ErrMatchCategoryInvalid  = errors.New("match category must be at least 1")
	ErrMatchStatusInvalid    = errors.New("invalid match status provided")
	ErrTeamInvalid           = errors.New("invalid team assignment provided")
	ErrMessageEmpty          = errors.New("message must not be empty")
	ErrMessageTooLong        = errors.New("message must not exceed 1000 characters")
	ErrImageURLRequired      = errors.New("url parameter is required")
	ErrImageDomainNotAllowed = errors.New("only google domains are allowed")
	ErrImageFetchFailed      = errors.New("failed to fetch image")

	// Authentication
	ErrAuthInvalidCredential = errors.New("invalid google credential")
	ErrAuthInvalidToken      = errors.New("invalid or expired token")

	// Infrastructure
	ErrStorageNotConfigured = errors.New("file storage is not configured")
	ErrPushNotConfigured    = errors.New("push delivery is not configured")
)
