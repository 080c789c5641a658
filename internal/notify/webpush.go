// Package notify holds the delivery transports behind the core's
// fire-and-forget Dispatcher. Transports absorb their own failures: a
// notification row is already stored by the time a transport runs, and no
// delivery problem may undo or block ledger work.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/utils"
)

// SubscriptionStore is the slice of the repository the web push transport
// needs. Implemented by repository.Repository.
type SubscriptionStore interface {
	ListActivePushSubscriptions(ctx context.Context, userID uint) ([]*models.PushSubscription, error)
	DeactivatePushSubscription(ctx context.Context, endpoint string) error
	TouchPushSubscription(ctx context.Context, endpoint string, at time.Time) error
}

type WebPush struct {
	store   SubscriptionStore
	options webpush.Options
	logger  *utils.Logger
}

func NewWebPush(store SubscriptionStore, publicKey, privateKey, subject string, logger *utils.Logger) *WebPush {
	return &WebPush{
		store: store,
		options: webpush.Options{
			Subscriber:      subject,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             60,
		},
		logger: logger,
	}
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Kind  string `json:"kind"`
	URL   string `json:"url"`
}

// Dispatch sends the message to every active endpoint of the user. An
// endpoint the push service reports gone (404/410) is deactivated; any other
// failure is logged and dropped.
func (w *WebPush) Dispatch(ctx context.Context, userID uint, kind models.NotificationKind, message string) {
	subs, err := w.store.ListActivePushSubscriptions(ctx, userID)
	if err != nil {
		w.logger.Errorf("failed to load push subscriptions for user %d: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{
		Title: "PocketKid",
		Body:  message,
		Kind:  string(kind),
		URL:   "/dashboard",
	})
	if err != nil {
		w.logger.Errorf("failed to encode push payload: %v", err)
		return
	}

	for _, sub := range subs {
		w.send(ctx, sub, payload)
	}
}

func (w *WebPush) send(ctx context.Context, sub *models.PushSubscription, payload []byte) {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &w.options)
	if err != nil {
		w.logger.Warnf("push delivery to user %d failed: %v", sub.UserID, err)
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		w.logger.Infof("push endpoint gone for user %d, deactivating", sub.UserID)
		if err := w.store.DeactivatePushSubscription(ctx, sub.Endpoint); err != nil {
			w.logger.Errorf("failed to deactivate push endpoint: %v", err)
		}
	default:
		if err := w.store.TouchPushSubscription(ctx, sub.Endpoint, time.Now().UTC()); err != nil {
			w.logger.Warnf("failed to touch push subscription: %v", err)
		}
	}
}
