package notify

import (
	"context"

	"github.com/pocketkid/pocketkid/internal/models"
)

// Dispatcher matches service.Dispatcher; redeclared here so transports do
// not import the service package.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID uint, kind models.NotificationKind, message string)
}

// Multi fans a dispatch out to every configured transport.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, userID uint, kind models.NotificationKind, message string) {
	for _, d := range m {
		d.Dispatch(ctx, userID, kind, message)
	}
}
