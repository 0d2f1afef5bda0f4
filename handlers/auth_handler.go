package handlers

import (
	"errors"
	"net/http"

	"github.com/padelhub/padelhub-server/middleware"
	"github.com/padelhub/padelhub-server/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GoogleSignIn exchanges a Google ID token for a local session token,
// creating or linking the account on first sign-in.
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Credential string `json:"credential"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Credential == "" {
		badRequestResponse(w, r, errors.New("credential is required"))
		return
	}

	user, token, err := h.authService.AuthenticateWithGoogle(r.Context(), input.Credential)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"success": true,
		"user":    user,
		"token":   token,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifySession resolves the bearer token back to its user.
func (h *AuthHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		unauthorizedResponse(w, r, "missing or invalid authorization header")
		return
	}

	user, err := h.authService.VerifyToken(r.Context(), token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"success": true,
		"user":    user,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
