package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/padelhub/padelhub-server/middleware"
	"github.com/padelhub/padelhub-server/services"
)

var errInvalidLimit = errors.New("limit must be a non-negative integer")

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// CreateMessage posts a chat message as the authenticated user and
// pushes it to connected websocket clients.
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.messageService.Create(r.Context(), matchID, userID, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMessages returns one page of chat history in chronological order.
// Use ?before=<messageId> to page backwards and ?limit= to size the page.
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequestResponse(w, r, errInvalidLimit)
			return
		}
	}
	before := r.URL.Query().Get("before")

	messages, err := h.messageService.ListByMatch(r.Context(), matchID, limit, before)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"messages": messages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := getIDFromURL(r, "messageId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.messageService.Delete(r.Context(), messageID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
