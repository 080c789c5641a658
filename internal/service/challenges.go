package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/money"
	"github.com/shopspring/decimal"
)

func (s *Service) CreateChallenge(ctx context.Context, name string, amount decimal.Decimal) (*models.Challenge, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ErrInvalidAction
	}
	if !money.ValidPositive(amount) {
		return nil, apperr.ErrInvalidAmount
	}

	challenge := &models.Challenge{
		Name:   name,
		Amount: money.Quantize(amount),
		Active: true,
	}
	if err := s.repo.CreateChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return challenge, nil
}

// ToggleChallenge flips the active flag. Hidden challenges are not found.
func (s *Service) ToggleChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge == nil || challenge.Hidden {
		return nil, apperr.ErrNotFound
	}
	challenge.Active = !challenge.Active
	if err := s.repo.UpdateChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// DeleteOrHideChallenge hard-deletes a challenge when nothing references it.
// A challenge still linked from historical requests or recurring movements
// is soft-hidden instead (deactivated and marked hidden), preserving
// referential history. The returned flag reports a soft-hide.
func (s *Service) DeleteOrHideChallenge(ctx context.Context, id uint) (hidden bool, err error) {
	challenge, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		return false, err
	}
	if challenge == nil || challenge.Hidden {
		return false, apperr.ErrNotFound
	}

	refs, err := s.repo.ChallengeReferenceCount(ctx, id)
	if err != nil {
		return false, err
	}
	if refs == 0 {
		if err := s.repo.DeleteChallenge(ctx, id); err == nil {
			return false, nil
		}
		// The delete itself can still hit a constraint the count missed;
		// fall through to the soft-hide.
	}

	challenge.Active = false
	challenge.Hidden = true
	if err := s.repo.UpdateChallenge(ctx, challenge); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ActiveChallenges(ctx context.Context) ([]*models.Challenge, error) {
	return s.repo.ListActiveChallenges(ctx)
}

func (s *Service) VisibleChallenges(ctx context.Context, page int) ([]*models.Challenge, error) {
	return s.repo.ListVisibleChallenges(ctx, pageSize, pageOffset(page))
}

func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
