package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pocketkid/pocketkid/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateRecurring(ctx context.Context, item *models.RecurringMovement) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetVisibleRecurring returns nil for hidden items; a soft-hidden movement is
// gone as far as the workflows are concerned.
func (r *Repository) GetVisibleRecurring(ctx context.Context, id uint) (*models.RecurringMovement, error) {
	var item models.RecurringMovement
	err := r.db.WithContext(ctx).First(&item, "id = ? AND hidden = ?", id, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring movement %d: %w", id, err)
	}
	return &item, nil
}

func (r *Repository) UpdateRecurring(ctx context.Context, item *models.RecurringMovement, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Save(item).Error
}

func (r *Repository) DeleteRecurring(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.RecurringMovement{}, id).Error
}

// ListDueRecurring selects active items whose due time has passed,
// earliest-due first, bounded so one pass cannot do unbounded catch-up.
func (r *Repository) ListDueRecurring(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*models.RecurringMovement, error) {
	var due []*models.RecurringMovement
	err := r.conn(tx).WithContext(ctx).
		Preload("Child").
		Where("active = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due recurring movements: %w", err)
	}
	return due, nil
}

func (r *Repository) ListVisibleRecurring(ctx context.Context, limit, offset int) ([]*models.RecurringMovement, error) {
	var items []*models.RecurringMovement
	err := r.db.WithContext(ctx).
		Preload("Child").
		Where("hidden = ?", false).
		Order("next_run_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring movements: %w", err)
	}
	return items, nil
}
