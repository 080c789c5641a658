package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketkid/pocketkid/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(user).Error
}

func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *Repository) ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s users: %w", role, err)
	}
	return users, nil
}

func (r *Repository) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

// DeleteUserCascade removes a user together with every row the user owns.
// Challenges and recurring movements created by the user survive; those the
// user is the child of do not.
func (r *Repository) DeleteUserCascade(ctx context.Context, tx *gorm.DB, userID uint) error {
	db := r.conn(tx).WithContext(ctx)

	owned := []struct {
		model  interface{}
		column string
	}{
		{&models.Wallet{}, "child_id"},
		{&models.OperationRequest{}, "child_id"},
		{&models.Transaction{}, "child_id"},
		{&models.RecurringMovement{}, "child_id"},
		{&models.Notification{}, "user_id"},
		{&models.PushSubscription{}, "user_id"},
	}
	for _, o := range owned {
		if err := db.Where(o.column+" = ?", userID).Delete(o.model).Error; err != nil {
			return fmt.Errorf("failed to cascade delete for user %d: %w", userID, err)
		}
	}

	if err := db.Delete(&models.User{}, userID).Error; err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return nil
}
