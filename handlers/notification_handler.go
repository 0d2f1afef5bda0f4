package handlers

import (
	"net/http"
	"strconv"

	"github.com/padelhub/padelhub-server/middleware"
	"github.com/padelhub/padelhub-server/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetVAPIDPublicKey hands out the application server key browsers need
// to register a push subscription.
func (h *NotificationHandler) GetVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	key := h.notificationService.VAPIDPublicKey()
	if key == "" {
		errorResponse(w, r, http.StatusServiceUnavailable, "push notifications are not configured")
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"public_key": key}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.SubscribeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sub, err := h.notificationService.Subscribe(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"subscription": sub}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Endpoint string `json:"endpoint"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.notificationService.Unsubscribe(r.Context(), userID, input.Endpoint); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	subs, err := h.notificationService.GetUserSubscriptions(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"subscriptions": subs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SendTestNotification pushes a message to the caller's own devices.
func (h *NotificationHandler) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var message services.PushMessage
	if err := readJSON(w, r, &message); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if message.Title == "" {
		message.Title = "Test Notification"
	}

	result, err := h.notificationService.SendPushNotification(r.Context(), userID, message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
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

	logs, err := h.notificationService.GetUserNotificationHistory(r.Context(), userID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": logs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
