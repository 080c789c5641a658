package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/money"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 4

// HasParent reports whether initial setup has completed.
func (s *Service) HasParent(ctx context.Context) (bool, error) {
	count, err := s.repo.CountUsersByRole(ctx, models.RoleParent)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Setup creates the very first parent account. Refused once any parent
// exists.
func (s *Service) Setup(ctx context.Context, username, password, language string) (*models.User, error) {
	exists, err := s.HasParent(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrParentExists
	}
	return s.createUser(ctx, username, password, language, models.RoleParent)
}

func (s *Service) CreateParent(ctx context.Context, username, password, language string) (*models.User, error) {
	return s.createUser(ctx, username, password, language, models.RoleParent)
}

// CreateChild creates a child account with its wallet. A positive initial
// balance is recorded as a parent deposit so the ledger invariant holds from
// the first row.
func (s *Service) CreateChild(ctx context.Context, actor *models.User, username, password, language string, initialBalance decimal.Decimal) (*models.User, error) {
	if actor.Role != models.RoleParent {
		return nil, apperr.ErrInvalidAction
	}

	username = strings.TrimSpace(username)
	if err := s.validateNewUser(ctx, username, password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	initialBalance = money.Quantize(initialBalance)
	if initialBalance.IsNegative() {
		return nil, apperr.ErrInvalidAmount
	}

	child := &models.User{
		Username:          username,
		PasswordHash:      hash,
		Role:              models.RoleChild,
		PreferredLanguage: normalizeLanguage(language),
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, child, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	wallet := &models.Wallet{ChildID: child.ID, Balance: initialBalance}
	if err := s.repo.CreateWallet(ctx, wallet, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	if initialBalance.IsPositive() {
		txn := &models.Transaction{
			ChildID:     child.ID,
			Kind:        models.KindParentDeposit,
			Amount:      initialBalance,
			Description: s.msgs.Format(MsgInitialBalance),
			CreatedBy:   &actor.ID,
		}
		if err := s.repo.CreateTransaction(ctx, txn, tx); err != nil {
			s.repo.Rollback(tx)
			return nil, fmt.Errorf("failed to record initial balance: %w", err)
		}
	}
	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}
	return child, nil
}

// Authenticate verifies credentials for the boundary layer.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, user *models.User, current, newPassword string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperr.ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLen {
		return apperr.ErrPasswordTooShort
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.repo.UpdateUser(ctx, user)
}

// ResetChildPassword lets a parent set a child's password without knowing
// the current one.
func (s *Service) ResetChildPassword(ctx context.Context, actor *models.User, childID uint, newPassword string) error {
	if actor.Role != models.RoleParent {
		return apperr.ErrInvalidAction
	}
	child, err := s.repo.GetUser(ctx, childID)
	if err != nil {
		return err
	}
	if child == nil || child.Role != models.RoleChild {
		return apperr.ErrNotFound
	}
	if len(newPassword) < minPasswordLen {
		return apperr.ErrPasswordTooShort
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	child.PasswordHash = hash
	return s.repo.UpdateUser(ctx, child)
}

func (s *Service) SetPreferredLanguage(ctx context.Context, user *models.User, language string) error {
	user.PreferredLanguage = normalizeLanguage(language)
	return s.repo.UpdateUser(ctx, user)
}

// DeleteChild removes a child and everything the child owns: wallet,
// transactions, requests, notifications, recurring movements and push
// subscriptions go with it. Challenges survive.
func (s *Service) DeleteChild(ctx context.Context, actor *models.User, childID uint) error {
	if actor.Role != models.RoleParent {
		return apperr.ErrInvalidAction
	}
	child, err := s.repo.GetUser(ctx, childID)
	if err != nil {
		return err
	}
	if child == nil || child.Role != models.RoleChild {
		return apperr.ErrNotFound
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUserCascade(ctx, tx, childID); err != nil {
		s.repo.Rollback(tx)
		return err
	}
	if err := s.repo.Commit(tx); err != nil {
		return err
	}
	s.invalidateBalance(ctx, childID)
	return nil
}

// DeleteParent removes another parent account. The acting parent cannot
// delete itself and the last parent always remains.
func (s *Service) DeleteParent(ctx context.Context, actor *models.User, parentID uint) error {
	if actor.Role != models.RoleParent {
		return apperr.ErrInvalidAction
	}
	if actor.ID == parentID {
		return apperr.ErrSelfDelete
	}
	target, err := s.repo.GetUser(ctx, parentID)
	if err != nil {
		return err
	}
	if target == nil || target.Role != models.RoleParent {
		return apperr.ErrNotFound
	}
	count, err := s.repo.CountUsersByRole(ctx, models.RoleParent)
	if err != nil {
		return err
	}
	if count <= 1 {
		return apperr.ErrLastParent
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUserCascade(ctx, tx, parentID); err != nil {
		s.repo.Rollback(tx)
		return err
	}
	return s.repo.Commit(tx)
}

func (s *Service) createUser(ctx context.Context, username, password, language string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := s.validateNewUser(ctx, username, password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:          username,
		PasswordHash:      hash,
		Role:              role,
		PreferredLanguage: normalizeLanguage(language),
	}
	if err := s.repo.CreateUser(ctx, user, nil); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", role, err)
	}
	return user, nil
}

func (s *Service) validateNewUser(ctx context.Context, username, password string) error {
	if username == "" {
		return apperr.ErrInvalidUsername
	}
	if len(password) < minPasswordLen {
		return apperr.ErrPasswordTooShort
	}
	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.ErrUsernameTaken
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" || len(language) > 5 {
		return "en"
	}
	return language
}
