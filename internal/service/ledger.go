package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/money"
	"github.com/pocketkid/pocketkid/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const balanceCacheTTL = 60 * time.Second

// GetOrCreateWallet returns the child's wallet, creating it with a zero
// balance on first access.
func (s *Service) GetOrCreateWallet(ctx context.Context, childID uint) (*models.Wallet, error) {
	return s.getOrCreateWallet(ctx, nil, childID)
}

func (s *Service) getOrCreateWallet(ctx context.Context, tx *gorm.DB, childID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetWalletByChild(ctx, childID, tx)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = &models.Wallet{ChildID: childID, Balance: decimal.Zero}
	if err := s.repo.CreateWallet(ctx, wallet, tx); err != nil {
		return nil, fmt.Errorf("failed to create wallet for child %d: %w", childID, err)
	}
	return wallet, nil
}

// post appends a ledger entry and moves the wallet balance by the signed
// amount, both inside the caller's transaction. It performs no
// non-negativity check: every debit caller pre-checks the balance within the
// same transaction before calling post.
func (s *Service) post(ctx context.Context, tx *gorm.DB, childID uint, kind models.TransactionKind, amount decimal.Decimal, description string, createdBy *uint) (*models.Transaction, error) {
	wallet, err := s.getOrCreateWallet(ctx, tx, childID)
	if err != nil {
		return nil, err
	}

	amount = money.Quantize(amount)
	newBalance := money.Quantize(wallet.Balance.Add(amount))
	if err := s.repo.UpdateWalletBalance(ctx, tx, wallet.ID, newBalance); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ChildID:     childID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateTransaction(ctx, txn, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	s.invalidateBalance(ctx, childID)
	return txn, nil
}

// Balance returns the child's current balance, reading through the cache
// when one is configured.
func (s *Service) Balance(ctx context.Context, childID uint) (decimal.Decimal, error) {
	key := balanceCacheKey(childID)
	if s.cache != nil {
		var cached string
		if found, err := utils.GetCache(ctx, s.cache, key, &cached); err == nil && found {
			if balance, err := decimal.NewFromString(cached); err == nil {
				return balance, nil
			}
		}
	}

	wallet, err := s.GetOrCreateWallet(ctx, childID)
	if err != nil {
		return decimal.Zero, err
	}

	if s.cache != nil {
		if err := utils.SetCache(ctx, s.cache, key, wallet.Balance.StringFixed(2), balanceCacheTTL); err != nil {
			s.logger.Warnf("failed to cache balance for child %d: %v", childID, err)
		}
	}
	return wallet.Balance, nil
}

// AuditBalance recomputes the balance from the transaction log and reports
// whether the wallet cache agrees with it.
func (s *Service) AuditBalance(ctx context.Context, childID uint) (bool, error) {
	wallet, err := s.GetOrCreateWallet(ctx, childID)
	if err != nil {
		return false, err
	}
	sum, err := s.repo.SumTransactionsByChild(ctx, childID)
	if err != nil {
		return false, err
	}
	return wallet.Balance.Equal(sum), nil
}

// invalidateBalance is best-effort: a stale miss only costs one DB read.
func (s *Service) invalidateBalance(ctx context.Context, childID uint) {
	if s.cache == nil {
		return
	}
	if err := utils.DeleteCache(ctx, s.cache, balanceCacheKey(childID)); err != nil {
		s.logger.Warnf("failed to invalidate balance cache for child %d: %v", childID, err)
	}
}

func balanceCacheKey(childID uint) string {
	return fmt.Sprintf("wallet:child:%d", childID)
}
