package handlers

import (
	"net/http"

	"github.com/padelhub/padelhub-server/models"
	"github.com/padelhub/padelhub-server/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateMatchByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteMatchByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) GetMatchPlayers(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.matchService.GetMatchPlayers(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddPlayer joins a user to the match roster. The response carries the
// refreshed match so clients can render the new roster immediately.
func (h *MatchHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID string                 `json:"user_id"`
		Team   *models.TeamAssignment `json:"team"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.AddPlayer(r.Context(), matchID, input.UserID, input.Team)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getIDFromURL(r, "userId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RemovePlayer(r.Context(), matchID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdatePlayerTeam(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getIDFromURL(r, "userId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Team models.TeamAssignment `json:"team"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdatePlayerTeam(r.Context(), matchID, userID, input.Team)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
