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

// dueBatchSize bounds how many due items one scheduler pass may process.
const dueBatchSize = 100

// NextRun advances a due time by one period. The offset is applied to the
// previous scheduled value, never to the processing time, so delayed
// processing does not accumulate drift. Monthly is a fixed 30 days on
// purpose: calendar-month arithmetic would shift the future due dates of
// every existing item.
func NextRun(current time.Time, frequency models.Frequency) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case models.FrequencyBiweekly:
		return current.AddDate(0, 0, 14)
	default:
		return current.AddDate(0, 0, 30)
	}
}

// RecurringInput describes a standing instruction a parent sets up.
type RecurringInput struct {
	ChildID     uint
	Movement    models.Movement
	Amount      decimal.Decimal
	Frequency   models.Frequency
	DepositMode models.DepositMode
	ChallengeID *uint
	Description string
	// StartAt is the first due time; nil means due immediately.
	StartAt *time.Time
}

// CreateRecurring validates and stores a standing instruction. The
// mode/challenge consistency matrix matches the manual movement engine:
// withdrawals are always free-mode and never challenge-linked.
func (s *Service) CreateRecurring(ctx context.Context, parent *models.User, in RecurringInput) (*models.RecurringMovement, error) {
	if parent.Role != models.RoleParent {
		return nil, apperr.ErrInvalidAction
	}

	child, err := s.repo.GetUser(ctx, in.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.Role != models.RoleChild {
		return nil, apperr.ErrNotFound
	}

	if in.Movement != models.MovementDeposit && in.Movement != models.MovementWithdraw {
		return nil, apperr.ErrInvalidMovement
	}
	if !in.Frequency.Valid() {
		return nil, apperr.ErrInvalidFrequency
	}
	if !money.ValidPositive(in.Amount) {
		return nil, apperr.ErrInvalidAmount
	}
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
			description = s.msgs.Format(MsgRecurringMovement)
		}
	}

	startAt := time.Now().UTC()
	if in.StartAt != nil {
		startAt = in.StartAt.UTC()
	}

	item := &models.RecurringMovement{
		ChildID:     in.ChildID,
		Movement:    in.Movement,
		Amount:      money.Quantize(in.Amount),
		Frequency:   in.Frequency,
		Description: description,
		DepositMode: in.DepositMode,
		ChallengeID: in.ChallengeID,
		NextRunAt:   startAt,
		Active:      true,
		CreatedBy:   parent.ID,
	}
	if err := s.repo.CreateRecurring(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create recurring movement: %w", err)
	}
	return item, nil
}

// ToggleRecurring flips the active flag. Hidden items are not found.
func (s *Service) ToggleRecurring(ctx context.Context, id uint) (*models.RecurringMovement, error) {
	item, err := s.repo.GetVisibleRecurring(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	item.Active = !item.Active
	if err := s.repo.UpdateRecurring(ctx, item, nil); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteOrHideRecurring removes a standing instruction, falling back to a
// soft-hide when the row cannot be deleted. The returned flag reports
// whether the item was hidden rather than deleted.
func (s *Service) DeleteOrHideRecurring(ctx context.Context, id uint) (hidden bool, err error) {
	item, err := s.repo.GetVisibleRecurring(ctx, id)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, apperr.ErrNotFound
	}

	if err := s.repo.DeleteRecurring(ctx, id); err == nil {
		return false, nil
	}

	item.Active = false
	item.Hidden = true
	if err := s.repo.UpdateRecurring(ctx, item, nil); err != nil {
		return false, err
	}
	return true, nil
}

// ProcessDueRecurring is the scheduler's idempotent entry point. It selects
// due items earliest-first, posts each one that clears its balance
// precondition, and advances every processed item by exactly one period. An
// item overdue by several periods catches up one occurrence per invocation. The whole pass commits as a single unit.
func (s *Service) ProcessDueRecurring(ctx context.Context, now time.Time) error {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	due, err := s.repo.ListDueRecurring(ctx, tx, now, dueBatchSize)
	if err != nil {
		s.repo.Rollback(tx)
		return err
	}
	if len(due) == 0 {
		s.repo.Rollback(tx)
		return nil
	}

	for _, item := range due {
		wallet, err := s.getOrCreateWallet(ctx, tx, item.ChildID)
		if err != nil {
			s.repo.Rollback(tx)
			return err
		}
		amount := money.Quantize(item.Amount)

		if item.Movement == models.MovementWithdraw && wallet.Balance.LessThan(amount) {
			// Skipped, not retried: the occurrence is missed and the item
			// is reconsidered only at its next scheduled time.
			message := s.msgs.Format(MsgNotifRecurringFailed, amount.StringFixed(2), childName(item))
			if err := s.notifyAllParents(ctx, tx, models.NotifRecurringFailed, message); err != nil {
				s.repo.Rollback(tx)
				return err
			}
			item.NextRunAt = NextRun(item.NextRunAt, item.Frequency)
			if err := s.repo.UpdateRecurring(ctx, item, tx); err != nil {
				s.repo.Rollback(tx)
				return err
			}
			continue
		}

		signed := amount
		notifKind := models.NotifWalletCredit
		if item.Movement == models.MovementWithdraw {
			signed = amount.Neg()
			notifKind = models.NotifWalletDebit
		}

		if _, err := s.post(ctx, tx, item.ChildID, models.RecurringKind(item.Movement), signed, item.Description, &item.CreatedBy); err != nil {
			s.repo.Rollback(tx)
			return err
		}
		message := s.msgs.Format(MsgNotifRecurringApplied, signed.StringFixed(2), item.Description)
		if err := s.notify(ctx, tx, item.ChildID, notifKind, message); err != nil {
			s.repo.Rollback(tx)
			return err
		}

		item.NextRunAt = NextRun(item.NextRunAt, item.Frequency)
		if err := s.repo.UpdateRecurring(ctx, item, tx); err != nil {
			s.repo.Rollback(tx)
			return err
		}
	}

	return s.repo.Commit(tx)
}

func childName(item *models.RecurringMovement) string {
	if item.Child != nil {
		return item.Child.Username
	}
	return fmt.Sprintf("child #%d", item.ChildID)
}
