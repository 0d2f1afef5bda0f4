package handlers

import (
	"net/http"

	"github.com/padelhub/padelhub-server/services"
)

type ImageProxyHandler struct {
	imageProxyService services.ImageProxyService
}

func NewImageProxyHandler(imageProxyService services.ImageProxyService) *ImageProxyHandler {
	return &ImageProxyHandler{imageProxyService: imageProxyService}
}

// ProxyImage fetches a Google-hosted avatar server side so the browser
// never talks to Google directly. Responses are cacheable for a day,
// matching the server side cache TTL.
func (h *ImageProxyHandler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")

	image, err := h.imageProxyService.Fetch(r.Context(), rawURL)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", image.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(image.Data)
}
