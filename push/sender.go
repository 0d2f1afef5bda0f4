package push

import (
	"context"

	"github.com/padelhub/padelhub-server/models"
)

// Sender delivers one payload to one push endpoint. Implementations
// return the endpoint's HTTP status code; 410 means the subscription is
// gone and should be deactivated by the caller.
type Sender interface {
	Send(ctx context.Context, sub *models.PushSubscription, payload []byte) (int, error)
}
