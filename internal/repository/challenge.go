package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketkid/pocketkid/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge %d: %w", id, err)
	}
	return &challenge, nil
}

func (r *Repository) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *Repository) UpdateChallenge(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}

func (r *Repository) DeleteChallenge(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Challenge{}, id).Error
}

// ChallengeReferenceCount reports how many historical records still point at
// the challenge. A non-zero count blocks a hard delete.
func (r *Repository) ChallengeReferenceCount(ctx context.Context, id uint) (int64, error) {
	var requests, recurring int64

	err := r.db.WithContext(ctx).
		Model(&models.OperationRequest{}).
		Where("challenge_id = ?", id).
		Count(&requests).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count request references for challenge %d: %w", id, err)
	}

	err = r.db.WithContext(ctx).
		Model(&models.RecurringMovement{}).
		Where("challenge_id = ?", id).
		Count(&recurring).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recurring references for challenge %d: %w", id, err)
	}

	return requests + recurring, nil
}

// ListVisibleChallenges returns non-hidden challenges, newest first.
func (r *Repository) ListVisibleChallenges(ctx context.Context, limit, offset int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("hidden = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// ListActiveChallenges returns the challenges a child may request rewards
// for, ordered by name.
func (r *Repository) ListActiveChallenges(ctx context.Context) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("active = ? AND hidden = ?", true, false).
		Order("name ASC").
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active challenges: %w", err)
	}
	return challenges, nil
}
