package service_test

import (
	"context"
	"testing"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostManualDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "0")

	txn, err := env.svc.PostManualMovement(ctx, parent, child.ID, service.ManualMovementInput{
		Movement:    models.MovementDeposit,
		Amount:      dec("12.345"),
		DepositMode: models.DepositModeFree,
		Description: "pocket money",
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindParentDeposit, txn.Kind)
	assert.True(t, txn.Amount.Equal(dec("12.35")), "amount quantized to two places, got %s", txn.Amount)
	assert.True(t, env.balance(t, child.ID).Equal(dec("12.35")))
	env.requireAudited(t, child.ID)

	credits := env.push.byKind(models.NotifWalletCredit)
	require.Len(t, credits, 1)
	assert.Equal(t, child.ID, credits[0].UserID)
}

func TestPostManualWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "10.00")

	txn, err := env.svc.PostManualMovement(ctx, parent, child.ID, service.ManualMovementInput{
		Movement:    models.MovementWithdraw,
		Amount:      dec("3.50"),
		DepositMode: models.DepositModeFree,
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindParentWithdrawal, txn.Kind)
	assert.True(t, txn.Amount.Equal(dec("-3.50")))
	assert.True(t, env.balance(t, child.ID).Equal(dec("6.50")))
	env.requireAudited(t, child.ID)
}

func TestPostManualWithdrawalInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "5.00")

	_, err := env.svc.PostManualMovement(ctx, parent, child.ID, service.ManualMovementInput{
		Movement:    models.MovementWithdraw,
		Amount:      dec("5.01"),
		DepositMode: models.DepositModeFree,
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)

	assert.True(t, env.balance(t, child.ID).Equal(dec("5.00")))
	assert.EqualValues(t, 1, env.transactionCount(t, child.ID))
	env.requireAudited(t, child.ID)
}

func TestPostManualChallengeDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "0")
	challenge, err := env.svc.CreateChallenge(ctx, "mow the lawn", dec("5.00"))
	require.NoError(t, err)

	txn, err := env.svc.PostManualMovement(ctx, parent, child.ID, service.ManualMovementInput{
		Movement:    models.MovementDeposit,
		Amount:      dec("5.00"),
		DepositMode: models.DepositModeChallenge,
		ChallengeID: &challenge.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindParentDepositChallenge, txn.Kind)
	assert.Contains(t, txn.Description, "mow the lawn")
	assert.True(t, env.balance(t, child.ID).Equal(dec("5.00")))
}

func TestPostManualMovementValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "10.00")
	challenge, err := env.svc.CreateChallenge(ctx, "dishes", dec("2.00"))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   service.ManualMovementInput
		want error
	}{
		{
			"unknown movement",
			service.ManualMovementInput{Movement: "transfer", Amount: dec("1"), DepositMode: models.DepositModeFree},
			apperr.ErrInvalidMovement,
		},
		{
			"zero amount",
			service.ManualMovementInput{Movement: models.MovementDeposit, Amount: dec("0"), DepositMode: models.DepositModeFree},
			apperr.ErrInvalidAmount,
		},
		{
			"negative amount",
			service.ManualMovementInput{Movement: models.MovementDeposit, Amount: dec("-2"), DepositMode: models.DepositModeFree},
			apperr.ErrInvalidAmount,
		},
		{
			"unknown deposit mode",
			service.ManualMovementInput{Movement: models.MovementDeposit, Amount: dec("1"), DepositMode: "bonus"},
			apperr.ErrInvalidAction,
		},
		{
			"withdrawal in challenge mode",
			service.ManualMovementInput{Movement: models.MovementWithdraw, Amount: dec("1"), DepositMode: models.DepositModeChallenge},
			apperr.ErrInvalidAction,
		},
		{
			"withdrawal with challenge reference",
			service.ManualMovementInput{Movement: models.MovementWithdraw, Amount: dec("1"), DepositMode: models.DepositModeFree, ChallengeID: &challenge.ID},
			apperr.ErrInvalidAction,
		},
		{
			"free deposit with challenge reference",
			service.ManualMovementInput{Movement: models.MovementDeposit, Amount: dec("1"), DepositMode: models.DepositModeFree, ChallengeID: &challenge.ID},
			apperr.ErrInvalidAction,
		},
		{
			"challenge mode without reference",
			service.ManualMovementInput{Movement: models.MovementDeposit, Amount: dec("1"), DepositMode: models.DepositModeChallenge},
			apperr.ErrChallengeInvalid,
		},
		{
			"challenge mode with unknown reference",
			service.ManualMovementInput{Movement: models.MovementDeposit, Amount: dec("1"), DepositMode: models.DepositModeChallenge, ChallengeID: ptr(uint(999))},
			apperr.ErrChallengeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.PostManualMovement(ctx, parent, child.ID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// None of the rejected inputs touched the ledger.
	assert.True(t, env.balance(t, child.ID).Equal(dec("10.00")))
	assert.EqualValues(t, 1, env.transactionCount(t, child.ID))
	env.requireAudited(t, child.ID)
}

func TestPostManualMovementActorGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "0")

	in := service.ManualMovementInput{Movement: models.MovementDeposit, Amount: dec("1"), DepositMode: models.DepositModeFree}

	_, err := env.svc.PostManualMovement(ctx, child, child.ID, in)
	assert.ErrorIs(t, err, apperr.ErrInvalidAction)

	_, err = env.svc.PostManualMovement(ctx, parent, 999, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// A parent is not a valid posting target.
	_, err = env.svc.PostManualMovement(ctx, parent, parent.ID, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
