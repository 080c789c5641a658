package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pocketkid/pocketkid/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateNotification(ctx context.Context, notification *models.Notification, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(notification).Error
}

func (r *Repository) ListUnreadNotifications(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

func (r *Repository) MarkNotificationsRead(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ?", ids).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *Repository) GetPushSubscriptionByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	err := r.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get push subscription: %w", err)
	}
	return &sub, nil
}

func (r *Repository) CreatePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *Repository) UpdatePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *Repository) ListActivePushSubscriptions(ctx context.Context, userID uint) ([]*models.PushSubscription, error) {
	var subs []*models.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions for user %d: %w", userID, err)
	}
	return subs, nil
}

// DeactivatePushSubscription marks an endpoint dead. Delivery code calls this
// when the push service confirms the endpoint is gone.
func (r *Repository) DeactivatePushSubscription(ctx context.Context, endpoint string) error {
	err := r.db.WithContext(ctx).
		Model(&models.PushSubscription{}).
		Where("endpoint = ?", endpoint).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate push subscription: %w", err)
	}
	return nil
}

// TouchPushSubscription records a successful delivery.
func (r *Repository) TouchPushSubscription(ctx context.Context, endpoint string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PushSubscription{}).
		Where("endpoint = ?", endpoint).
		Update("last_seen_at", at).Error
}
