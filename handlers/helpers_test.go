package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padelhub/padelhub-server/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", services.ErrUserNotFound, http.StatusNotFound},
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"message not found", services.ErrMessageNotFound, http.StatusNotFound},
		{"player already in match", services.ErrPlayerAlreadyInMatch, http.StatusConflict},
		{"club referenced", services.ErrClubReferenced, http.StatusConflict},
		{"validation failed", services.ErrValidationFailed, http.StatusBadRequest},
		{"message too long", services.ErrMessageTooLong, http.StatusBadRequest},
		{"image url required", services.ErrImageURLRequired, http.StatusBadRequest},
		{"invalid token", services.ErrAuthInvalidToken, http.StatusUnauthorized},
		{"image domain not allowed", services.ErrImageDomainNotAllowed, http.StatusForbidden},
		{"image fetch failed", services.ErrImageFetchFailed, http.StatusInternalServerError},
		{"storage not configured", services.ErrStorageNotConfigured, http.StatusServiceUnavailable},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(recorder, request, tc.err)
			assert.Equal(t, tc.want, recorder.Code)
		})
	}
}
