package push

import (
	"context"
	"errors"
	"fmt"
	"io"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/padelhub/padelhub-server/models"
)

const defaultTTL = 60 // seconds the push service may queue the message

type WebPushSenderConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string
}

type webPushSender struct {
	cfg WebPushSenderConfig
}

func NewWebPushSender(cfg WebPushSenderConfig) (Sender, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, errors.New("invalid web push configuration: VAPID key pair is required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("invalid web push configuration: subject is required")
	}
	return &webPushSender{cfg: cfg}, nil
}

func (s *webPushSender) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             defaultTTL,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to send push notification: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
