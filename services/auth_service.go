package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/repositories"
	"google.golang.org/api/idtoken"
)

const sessionTokenTTL = 24 * time.Hour

// GoogleClaims is the subset of an ID token payload the resolver needs.
type GoogleClaims struct {
	Subject    string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Picture    string
}

// TokenVerifier checks a Google ID token's signature and audience and
// extracts its identity claims.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleClaims, error)
}

type googleTokenVerifier struct {
	clientID string
}

func NewGoogleTokenVerifier(clientID string) TokenVerifier {
	return &googleTokenVerifier{clientID: clientID}
}

func (v *googleTokenVerifier) Verify(ctx context.Context, credential string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthInvalidCredential, err)
	}

	claims := &GoogleClaims{
		Subject:    payload.Subject,
		Email:      stringClaim(payload, "email"),
		Name:       stringClaim(payload, "name"),
		GivenName:  stringClaim(payload, "given_name"),
		FamilyName: stringClaim(payload, "family_name"),
		Picture:    stringClaim(payload, "picture"),
	}
	if claims.Email == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: payload is missing email or subject", ErrAuthInvalidCredential)
	}
	return claims, nil
}

func stringClaim(payload *idtoken.Payload, key string) string {
	value, _ := payload.Claims[key].(string)
	return value
}

type AuthService interface {
	// AuthenticateWithGoogle resolves a Google credential to a local
	// user, creating or linking the account, and issues a session token.
	AuthenticateWithGoogle(ctx context.Context, credential string) (*models.User, string, error)
	// VerifyToken resolves a session token back to its user. Any
	// malformed, expired or unresolvable token yields ErrAuthInvalidToken.
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	verifier  TokenVerifier
	userRepo  repositories.UserRepository
	jwtSecret []byte
	logger    *slog.Logger
}

func NewAuthService(verifier TokenVerifier, userRepo repositories.UserRepository, jwtSecret string, logger *slog.Logger) AuthService {
	return &authService{
		verifier:  verifier,
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

func (s *authService) AuthenticateWithGoogle(ctx context.Context, credential string) (*models.User, string, error) {
	claims, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByEmailOrGoogleID(ctx, claims.Email, claims.Subject)
	switch {
	case err == nil:
		if user.GoogleID == nil {
			if err := s.userRepo.LinkGoogleID(ctx, user.ID, claims.Subject); err != nil {
				return nil, "", fmt.Errorf("failed to link google account: %w", err)
			}
			user.GoogleID = &claims.Subject
			user.IsUserVerified = true
		}
	case errors.Is(err, repositories.ErrUserNotFound):
		user, err = s.createFromGoogle(ctx, claims)
		if err != nil {
			return nil, "", err
		}
		s.logger.Info("created user from google sign-in", slog.String("user_id", user.ID))
	default:
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) createFromGoogle(ctx context.Context, claims *GoogleClaims) (*models.User, error) {
	firstName, lastName := splitName(claims)

	user := &models.User{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          claims.Email,
		GoogleID:       &claims.Subject,
		IsUserVerified: true,
		Category:       8,
	}
	if claims.Picture != "" {
		picture := claims.Picture
		user.ProfilePictureURL = &picture
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user from google claims: %w", err)
	}
	return user, nil
}

// splitName prefers the explicit given/family claims and falls back to
// splitting the display name on whitespace.
func splitName(claims *GoogleClaims) (string, string) {
	firstName := claims.GivenName
	lastName := claims.FamilyName

	fields := strings.Fields(claims.Name)
	if firstName == "" {
		if len(fields) > 0 {
			firstName = fields[0]
		} else {
			firstName = "User"
		}
	}
	if lastName == "" && len(fields) > 1 {
		lastName = strings.Join(fields[1:], " ")
	}
	return firstName, lastName
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"iat":     now.Unix(),
		"exp":     now.Add(sessionTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrAuthInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAuthInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrAuthInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	return user, nil
}
