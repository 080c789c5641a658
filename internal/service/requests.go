package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/money"
	"github.com/shopspring/decimal"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// SubmitRewardRequest files a pending reward request for an active, visible
// challenge. The amount is copied from the challenge at submission time, so
// later challenge edits never change what a pending request is worth.
func (s *Service) SubmitRewardRequest(ctx context.Context, child *models.User, challengeID uint, description string) (*models.OperationRequest, error) {
	if child.Role != models.RoleChild {
		return nil, apperr.ErrInvalidAction
	}

	challenge, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge == nil || !challenge.Active || challenge.Hidden {
		return nil, apperr.ErrChallengeInvalid
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = s.msgs.Format(MsgCompletedChallenge, challenge.Name)
	}

	request := &models.OperationRequest{
		Type:        models.RequestReward,
		Status:      models.StatusPending,
		ChildID:     child.ID,
		ChallengeID: &challenge.ID,
		Amount:      money.Quantize(challenge.Amount),
		Description: description,
	}

	message := s.msgs.Format(MsgNotifRewardRequest, child.Username, challenge.Name, request.Amount.StringFixed(2))
	if err := s.submit(ctx, request, message); err != nil {
		return nil, err
	}
	return request, nil
}

// SubmitWithdrawalRequest files a pending withdrawal request. The balance is
// only checked at approval time.
func (s *Service) SubmitWithdrawalRequest(ctx context.Context, child *models.User, amount decimal.Decimal, description string) (*models.OperationRequest, error) {
	return s.submitAmountRequest(ctx, child, models.RequestWithdrawal, amount, description)
}

// SubmitDepositRequest files a pending deposit request.
func (s *Service) SubmitDepositRequest(ctx context.Context, child *models.User, amount decimal.Decimal, description string) (*models.OperationRequest, error) {
	return s.submitAmountRequest(ctx, child, models.RequestDeposit, amount, description)
}

func (s *Service) submitAmountRequest(ctx context.Context, child *models.User, kind models.RequestType, amount decimal.Decimal, description string) (*models.OperationRequest, error) {
	if child.Role != models.RoleChild {
		return nil, apperr.ErrInvalidAction
	}
	if !money.ValidPositive(amount) {
		return nil, apperr.ErrInvalidAmount
	}
	amount = money.Quantize(amount)

	description = strings.TrimSpace(description)
	var message string
	switch kind {
	case models.RequestWithdrawal:
		if description == "" {
			description = s.msgs.Format(MsgWithdrawalRequest)
		}
		message = s.msgs.Format(MsgNotifWithdrawRequest, child.Username, amount.StringFixed(2))
	case models.RequestDeposit:
		if description == "" {
			description = s.msgs.Format(MsgDepositRequest)
		}
		message = s.msgs.Format(MsgNotifDepositRequest, child.Username, amount.StringFixed(2))
	default:
		return nil, apperr.ErrInvalidAction
	}

	request := &models.OperationRequest{
		Type:        kind,
		Status:      models.StatusPending,
		ChildID:     child.ID,
		Amount:      amount,
		Description: description,
	}
	if err := s.submit(ctx, request, message); err != nil {
		return nil, err
	}
	return request, nil
}

// submit persists the request and the parent notifications as one unit.
func (s *Service) submit(ctx context.Context, request *models.OperationRequest, message string) error {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.CreateRequest(ctx, request, tx); err != nil {
		s.repo.Rollback(tx)
		return fmt.Errorf("failed to create request: %w", err)
	}
	if err := s.notifyAllParents(ctx, tx, models.NotifApprovalRequired, message); err != nil {
		s.repo.Rollback(tx)
		return err
	}
	return s.repo.Commit(tx)
}

// DecideRequest applies a parent decision to a pending request. Approval of
// a withdrawal with insufficient balance fails without a transition, leaving
// the request pending and retryable. Decided requests are terminal: a second
// decision attempt reports the request as not pending.
func (s *Service) DecideRequest(ctx context.Context, parent *models.User, requestID uint, decision Decision) error {
	if parent.Role != models.RoleParent {
		return apperr.ErrInvalidAction
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return apperr.ErrInvalidDecision
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	request, err := s.repo.GetPendingRequest(ctx, requestID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return err
	}
	if request == nil {
		s.repo.Rollback(tx)
		return apperr.ErrRequestNotPending
	}

	now := time.Now().UTC()
	request.ReviewedAt = &now
	request.ReviewedBy = &parent.ID

	if decision == DecisionReject {
		request.Status = models.StatusRejected
		if err := s.repo.UpdateRequest(ctx, request, tx); err != nil {
			s.repo.Rollback(tx)
			return err
		}
		message := s.msgs.Format(MsgNotifRequestRejected, request.Description)
		if err := s.notify(ctx, tx, request.ChildID, models.NotifRequestRejected, message); err != nil {
			s.repo.Rollback(tx)
			return err
		}
		return s.repo.Commit(tx)
	}

	switch request.Type {
	case models.RequestReward, models.RequestDeposit:
		kind := models.KindReward
		if request.Type == models.RequestDeposit {
			kind = models.KindRequestedDeposit
		}
		if _, err := s.post(ctx, tx, request.ChildID, kind, request.Amount, request.Description, &parent.ID); err != nil {
			s.repo.Rollback(tx)
			return err
		}
		message := s.msgs.Format(MsgNotifWalletCredit, request.Amount.StringFixed(2))
		if err := s.notify(ctx, tx, request.ChildID, models.NotifWalletCredit, message); err != nil {
			s.repo.Rollback(tx)
			return err
		}

	case models.RequestWithdrawal:
		wallet, err := s.getOrCreateWallet(ctx, tx, request.ChildID)
		if err != nil {
			s.repo.Rollback(tx)
			return err
		}
		if wallet.Balance.LessThan(request.Amount) {
			s.repo.Rollback(tx)
			return apperr.ErrInsufficientBalance
		}
		if _, err := s.post(ctx, tx, request.ChildID, models.KindWithdrawal, request.Amount.Neg(), request.Description, &parent.ID); err != nil {
			s.repo.Rollback(tx)
			return err
		}
		message := s.msgs.Format(MsgNotifWalletDebit, request.Amount.StringFixed(2))
		if err := s.notify(ctx, tx, request.ChildID, models.NotifWalletDebit, message); err != nil {
			s.repo.Rollback(tx)
			return err
		}

	default:
		s.repo.Rollback(tx)
		return apperr.ErrInvalidAction
	}

	request.Status = models.StatusApproved
	if err := s.repo.UpdateRequest(ctx, request, tx); err != nil {
		s.repo.Rollback(tx)
		return err
	}
	return s.repo.Commit(tx)
}
