package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/services"
)

type contextKey string

const userContextKey contextKey = "user"

// BearerToken extracts the token from an Authorization header. An empty
// string means no bearer token was supplied.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Authenticate resolves the bearer token to a user and stores it in the
// request context. Requests without a valid token are rejected.
func Authenticate(authService services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "missing or invalid authorization header", http.StatusUnauthorized)
				return
			}

			user, err := authService.VerifyToken(r.Context(), token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserFromContext(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	user, err := GetUserFromContext(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
