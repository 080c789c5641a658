package service

import (
	"context"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
)

// ChildDashboard is the read model behind a child's home view.
type ChildDashboard struct {
	Wallet       *models.Wallet
	Challenges   []*models.Challenge
	Requests     []*models.OperationRequest
	Transactions []*models.Transaction
}

func (s *Service) ChildDashboard(ctx context.Context, childID uint, page int) (*ChildDashboard, error) {
	wallet, err := s.GetOrCreateWallet(ctx, childID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.repo.ListActiveChallenges(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.repo.ListRequestsByChild(ctx, childID, pageSize, pageOffset(page))
	if err != nil {
		return nil, err
	}
	transactions, err := s.repo.ListTransactionsByChild(ctx, childID, pageSize, pageOffset(page))
	if err != nil {
		return nil, err
	}
	return &ChildDashboard{
		Wallet:       wallet,
		Challenges:   challenges,
		Requests:     requests,
		Transactions: transactions,
	}, nil
}

// ChildRow pairs a child with its wallet and pending request count on the
// parent's overview.
type ChildRow struct {
	Child        *models.User
	Wallet       *models.Wallet
	PendingCount int64
}

// ParentDashboard is the read model behind a parent's home view.
type ParentDashboard struct {
	Children        []ChildRow
	PendingRequests []*models.OperationRequest
}

func (s *Service) ParentDashboard(ctx context.Context, page int) (*ParentDashboard, error) {
	children, err := s.repo.ListUsersByRole(ctx, models.RoleChild)
	if err != nil {
		return nil, err
	}

	rows := make([]ChildRow, 0, len(children))
	for _, child := range children {
		wallet, err := s.GetOrCreateWallet(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		pending, err := s.repo.CountPendingRequestsByChild(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ChildRow{Child: child, Wallet: wallet, PendingCount: pending})
	}

	pending, err := s.repo.ListPendingRequests(ctx, pageSize, pageOffset(page))
	if err != nil {
		return nil, err
	}
	return &ParentDashboard{Children: rows, PendingRequests: pending}, nil
}

// ChildTransactions lists a child's ledger page for a parent's wallet view.
func (s *Service) ChildTransactions(ctx context.Context, childID uint, page int) ([]*models.Transaction, error) {
	child, err := s.repo.GetUser(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.Role != models.RoleChild {
		return nil, apperr.ErrNotFound
	}
	return s.repo.ListTransactionsByChild(ctx, childID, pageSize, pageOffset(page))
}

// VisibleRecurring lists non-hidden standing instructions, soonest due
// first.
func (s *Service) VisibleRecurring(ctx context.Context, page int) ([]*models.RecurringMovement, error) {
	return s.repo.ListVisibleRecurring(ctx, pageSize, pageOffset(page))
}
