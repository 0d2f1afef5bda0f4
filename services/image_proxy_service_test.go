package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padelhub/padelhub-server/cache"
)

func newTestImageProxy(t *testing.T) (ImageProxyService, *cache.Store) {
	t.Helper()
	store := cache.NewStore(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewImageProxyService(store, logger), store
}

func TestImageProxy_Fetch_RequiresURL(t *testing.T) {
	t.Parallel()
	svc, _ := newTestImageProxy(t)

	_, err := svc.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrImageURLRequired)
}

func TestImageProxy_Fetch_RejectsForeignHosts(t *testing.T) {
	t.Parallel()
	svc, _ := newTestImageProxy(t)

	for _, rawURL := range []string{
		"https://example.com/avatar.png",
		"https://evil-googleapis.com/avatar.png",
		"https://googleapis.com.evil.net/avatar.png",
		"not a url",
	} {
		_, err := svc.Fetch(context.Background(), rawURL)
		assert.ErrorIs(t, err, ErrImageDomainNotAllowed, rawURL)
	}
}

func TestImageProxy_Fetch_ServesFromCache(t *testing.T) {
	t.Parallel()
	svc, store := newTestImageProxy(t)

	rawURL := "https://lh3.googleusercontent.com/a/photo=s96-c"
	cached := &ProxiedImage{ContentType: "image/png", Data: []byte("png-bytes")}
	store.Set("image:"+rawURL, cached)

	// No upstream exists in this test, so a hit proves the cache served it.
	image, err := svc.Fetch(context.Background(), rawURL)
	require.NoError(t, err)
	assert.Equal(t, cached, image)
}

func TestHostAllowed(t *testing.T) {
	t.Parallel()
	cases := []struct {
		rawURL string
		want   bool
	}{
		{"https://lh3.googleusercontent.com/a/photo", true},
		{"https://yt3.ggpht.com/some/photo", true},
		{"https://storage.googleapis.com/bucket/avatar.jpg", true},
		{"https://googleusercontent.com/photo", true},
		{"https://example.com/photo", false},
		{"https://notgoogleusercontent.com/photo", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, hostAllowed(tc.rawURL), tc.rawURL)
	}
}
