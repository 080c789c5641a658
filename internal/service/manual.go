package service

import (
	"context"
	"strings"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/money"
	"github.com/shopspring/decimal"
)

// ManualMovementInput is a parent-initiated direct posting that bypasses the
// request workflow.
type ManualMovementInput struct {
	Movement    models.Movement
	Amount      decimal.Decimal
	DepositMode models.DepositMode
	ChallengeID *uint
	Description string
}

// PostManualMovement validates and posts a direct deposit or withdrawal to a
// child's wallet. A challenge reference is only legal on a deposit in
// challenge mode; every other combination is an invalid action, never
// silently ignored.
func (s *Service) PostManualMovement(ctx context.Context, parent *models.User, childID uint, in ManualMovementInput) (*models.Transaction, error) {
	if parent.Role != models.RoleParent {
		return nil, apperr.ErrInvalidAction
	}

	child, err := s.repo.GetUser(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.Role != models.RoleChild {
		return nil, apperr.ErrNotFound
	}

	if in.Movement != models.MovementDeposit && in.Movement != models.MovementWithdraw {
		return nil, apperr.ErrInvalidMovement
	}
	if !money.ValidPositive(in.Amount) {
		return nil, apperr.ErrInvalidAmount
	}
	amount := money.Quantize(in.Amount)

	if in.DepositMode != models.DepositModeFree && in.DepositMode != models.DepositModeChallenge {
		return nil, apperr.ErrInvalidAction
	}
	if in.Movement != models.MovementDeposit && (in.DepositMode != models.DepositModeFree || in.ChallengeID != nil) {
		return nil, apperr.ErrInvalidAction
	}
	if in.Movement == models.MovementDeposit && in.DepositMode == models.DepositModeFree && in.ChallengeID != nil {
		return nil, apperr.ErrInvalidAction
	}

	var challenge *models.Challenge
	if in.Movement == models.MovementDeposit && in.DepositMode == models.DepositModeChallenge {
		if in.ChallengeID == nil {
			return nil, apperr.ErrChallengeInvalid
		}
		challenge, err = s.repo.GetChallenge(ctx, *in.ChallengeID)
		if err != nil {
			return nil, err
		}
		if challenge == nil || challenge.Hidden {
			return nil, apperr.ErrChallengeInvalid
		}
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		if challenge != nil {
			description = s.msgs.Format(MsgDepositLinkedChallenge, challenge.Name)
		} else {
			description = s.msgs.Format(MsgManualMovement)
		}
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	wallet, err := s.getOrCreateWallet(ctx, tx, childID)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if in.Movement == models.MovementWithdraw && wallet.Balance.LessThan(amount) {
		s.repo.Rollback(tx)
		return nil, apperr.ErrInsufficientBalance
	}

	signed := amount
	kind := models.KindParentDeposit
	notifKind := models.NotifWalletCredit
	switch {
	case in.Movement == models.MovementDeposit && challenge != nil:
		kind = models.KindParentDepositChallenge
	case in.Movement == models.MovementWithdraw:
		signed = amount.Neg()
		kind = models.KindParentWithdrawal
		notifKind = models.NotifWalletDebit
	}

	txn, err := s.post(ctx, tx, childID, kind, signed, description, &parent.ID)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	message := s.msgs.Format(MsgNotifParentMovement, signed.StringFixed(2), description)
	if err := s.notify(ctx, tx, childID, notifKind, message); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}
	return txn, nil
}
