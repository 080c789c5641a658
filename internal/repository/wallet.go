package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (r *Repository) GetWalletByChild(ctx context.Context, childID uint, tx *gorm.DB) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.conn(tx).WithContext(ctx).First(&wallet, "child_id = ?", childID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for child %d: %w", childID, err)
	}
	return &wallet, nil
}

func (r *Repository) CreateWallet(ctx context.Context, wallet *models.Wallet, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(wallet).Error
}

func (r *Repository) UpdateWalletBalance(ctx context.Context, tx *gorm.DB, walletID uint, balance decimal.Decimal) error {
	err := r.conn(tx).WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance).Error
	if err != nil {
		return fmt.Errorf("failed to update wallet %d balance: %w", walletID, err)
	}
	return nil
}

func (r *Repository) CreateTransaction(ctx context.Context, txn *models.Transaction, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(txn).Error
}

func (r *Repository) ListTransactionsByChild(ctx context.Context, childID uint, limit, offset int) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for child %d: %w", childID, err)
	}
	return txns, nil
}

// SumTransactionsByChild derives the balance from the ledger itself. Used to
// audit the wallet cache against the append-only log.
func (r *Repository) SumTransactionsByChild(ctx context.Context, childID uint) (decimal.Decimal, error) {
	var raw struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("child_id = ?", childID).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for child %d: %w", childID, err)
	}
	return raw.Total, nil
}
