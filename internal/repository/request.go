package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketkid/pocketkid/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateRequest(ctx context.Context, request *models.OperationRequest, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(request).Error
}

// GetPendingRequest loads a request only while it is still pending; decided
// requests are indistinguishable from missing ones to the caller.
func (r *Repository) GetPendingRequest(ctx context.Context, id uint, tx *gorm.DB) (*models.OperationRequest, error) {
	var request models.OperationRequest
	err := r.conn(tx).WithContext(ctx).
		First(&request, "id = ? AND status = ?", id, models.StatusPending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending request %d: %w", id, err)
	}
	return &request, nil
}

func (r *Repository) UpdateRequest(ctx context.Context, request *models.OperationRequest, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Save(request).Error
}

func (r *Repository) ListRequestsByChild(ctx context.Context, childID uint, limit, offset int) ([]*models.OperationRequest, error) {
	var requests []*models.OperationRequest
	err := r.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for child %d: %w", childID, err)
	}
	return requests, nil
}

func (r *Repository) ListPendingRequests(ctx context.Context, limit, offset int) ([]*models.OperationRequest, error) {
	var requests []*models.OperationRequest
	err := r.db.WithContext(ctx).
		Preload("Child").
		Where("status = ?", models.StatusPending).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

func (r *Repository) CountPendingRequestsByChild(ctx context.Context, childID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OperationRequest{}).
		Where("child_id = ? AND status = ?", childID, models.StatusPending).
		Count(&count).Error
	return count, err
}
