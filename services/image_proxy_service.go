package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/padelhub/padelhub-server/cache"
)

// Hosts Google serves avatar images from. Anything else is refused so
// the proxy cannot be used to fetch arbitrary URLs.
var allowedImageHosts = []string{
	"googleusercontent.com",
	"ggpht.com",
	"googleapis.com",
}

const imageFetchTimeout = 10 * time.Second

// ProxiedImage is a fetched avatar ready to serve.
type ProxiedImage struct {
	ContentType string
	Data        []byte
}

type ImageProxyService interface {
	// Fetch returns the image at rawURL, serving from cache when possible.
	Fetch(ctx context.Context, rawURL string) (*ProxiedImage, error)
}

type imageProxyService struct {
	client *http.Client
	store  *cache.Store
	logger *slog.Logger
}

func NewImageProxyService(store *cache.Store, logger *slog.Logger) ImageProxyService {
	return &imageProxyService{
		client: &http.Client{Timeout: imageFetchTimeout},
		store:  store,
		logger: logger,
	}
}

func (s *imageProxyService) Fetch(ctx context.Context, rawURL string) (*ProxiedImage, error) {
	if rawURL == "" {
		return nil, ErrImageURLRequired
	}
	if !hostAllowed(rawURL) {
		return nil, ErrImageDomainNotAllowed
	}

	cacheKey := "image:" + rawURL
	if cached, ok := s.store.Get(cacheKey); ok {
		if image, ok := cached.(*ProxiedImage); ok {
			return image, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetchFailed, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrImageFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetchFailed, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	image := &ProxiedImage{ContentType: contentType, Data: data}
	s.store.Set(cacheKey, image)
	s.logger.Debug("cached proxied image", slog.String("url", rawURL), slog.Int("bytes", len(data)))
	return image, nil
}

// hostAllowed matches the host against the allow list on dot boundaries,
// so evil-googleapis.com does not pass.
func hostAllowed(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())

	for _, allowed := range allowedImageHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
