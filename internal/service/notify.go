package service

import (
	"context"
	"time"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
	"gorm.io/gorm"
)

// notify stores a notification row inside the caller's transaction and hands
// the message to the push dispatcher. Push delivery is best-effort and never
// fails the calling workflow.
func (s *Service) notify(ctx context.Context, tx *gorm.DB, userID uint, kind models.NotificationKind, message string) error {
	notification := &models.Notification{
		UserID:  userID,
		Kind:    kind,
		Message: message,
	}
	if err := s.repo.CreateNotification(ctx, notification, tx); err != nil {
		return err
	}
	if s.push != nil {
		s.push.Dispatch(ctx, userID, kind, message)
	}
	return nil
}

func (s *Service) notifyAllParents(ctx context.Context, tx *gorm.DB, kind models.NotificationKind, message string) error {
	parents, err := s.repo.ListUsersByRole(ctx, models.RoleParent)
	if err != nil {
		return err
	}
	for _, parent := range parents {
		if err := s.notify(ctx, tx, parent.ID, kind, message); err != nil {
			return err
		}
	}
	return nil
}

// NotificationFeed returns the oldest unread notifications, optionally
// marking the returned batch read.
func (s *Service) NotificationFeed(ctx context.Context, userID uint, markRead bool) ([]*models.Notification, error) {
	unread, err := s.repo.ListUnreadNotifications(ctx, userID, pageSize)
	if err != nil {
		return nil, err
	}

	if markRead && len(unread) > 0 {
		ids := make([]uint, len(unread))
		for i, n := range unread {
			ids[i] = n.ID
		}
		if err := s.repo.MarkNotificationsRead(ctx, ids); err != nil {
			return nil, err
		}
	}
	return unread, nil
}

// SavePushSubscription registers or refreshes a delivery endpoint. An
// endpoint already known is re-bound to the given user and reactivated.
func (s *Service) SavePushSubscription(ctx context.Context, userID uint, endpoint, p256dh, auth string) error {
	if endpoint == "" || p256dh == "" || auth == "" {
		return apperr.ErrInvalidSubscription
	}

	sub, err := s.repo.GetPushSubscriptionByEndpoint(ctx, endpoint)
	if err != nil {
		return err
	}
	if sub == nil {
		return s.repo.CreatePushSubscription(ctx, &models.PushSubscription{
			UserID:     userID,
			Endpoint:   endpoint,
			P256dh:     p256dh,
			Auth:       auth,
			IsActive:   true,
			LastSeenAt: time.Now().UTC(),
		})
	}

	sub.UserID = userID
	sub.P256dh = p256dh
	sub.Auth = auth
	sub.IsActive = true
	sub.LastSeenAt = time.Now().UTC()
	return s.repo.UpdatePushSubscription(ctx, sub)
}

// RemovePushSubscription deactivates an endpoint on the user's request.
// Unknown endpoints are a no-op.
func (s *Service) RemovePushSubscription(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return apperr.ErrInvalidSubscription
	}
	sub, err := s.repo.GetPushSubscriptionByEndpoint(ctx, endpoint)
	if err != nil || sub == nil {
		return err
	}
	sub.IsActive = false
	return s.repo.UpdatePushSubscription(ctx, sub)
}
