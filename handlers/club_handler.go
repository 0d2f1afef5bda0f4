package handlers

import (
	"errors"
	"net/http"

	"github.com/padelhub/padelhub-server/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(clubService services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

func (h *ClubHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetClubByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UpdateClubByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) DeleteClubByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clubService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ClubHandler) UploadClubPicture(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	club, err := h.clubService.UploadPicture(r.Context(), id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
