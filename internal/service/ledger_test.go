package service_test

import (
	"context"
	"testing"

	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateWallet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "0")

	wallet, err := env.svc.GetOrCreateWallet(ctx, child.ID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.IsZero())

	again, err := env.svc.GetOrCreateWallet(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)
}

func TestBalanceTracksPostings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "20.00")

	_, err := env.svc.PostManualMovement(ctx, parent, child.ID, service.ManualMovementInput{
		Movement: models.MovementDeposit, Amount: dec("2.50"), DepositMode: models.DepositModeFree,
	})
	require.NoError(t, err)
	_, err = env.svc.PostManualMovement(ctx, parent, child.ID, service.ManualMovementInput{
		Movement: models.MovementWithdraw, Amount: dec("10.00"), DepositMode: models.DepositModeFree,
	})
	require.NoError(t, err)

	assert.True(t, env.balance(t, child.ID).Equal(dec("12.50")))
	env.requireAudited(t, child.ID)
}

// The wallet balance must equal the transaction sum after any mix of
// workflows touching the same child.
func TestLedgerInvariantAcrossWorkflows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "15.00")

	challenge, err := env.svc.CreateChallenge(ctx, "homework", dec("3.00"))
	require.NoError(t, err)

	reward, err := env.svc.SubmitRewardRequest(ctx, child, challenge.ID, "")
	require.NoError(t, err)
	require.NoError(t, env.svc.DecideRequest(ctx, parent, reward.ID, service.DecisionApprove))

	withdrawal, err := env.svc.SubmitWithdrawalRequest(ctx, child, dec("6.00"), "")
	require.NoError(t, err)
	require.NoError(t, env.svc.DecideRequest(ctx, parent, withdrawal.ID, service.DecisionApprove))

	_, err = env.svc.PostManualMovement(ctx, parent, child.ID, service.ManualMovementInput{
		Movement: models.MovementDeposit, Amount: dec("0.50"), DepositMode: models.DepositModeFree,
	})
	require.NoError(t, err)

	assert.True(t, env.balance(t, child.ID).Equal(dec("12.50")))
	env.requireAudited(t, child.ID)
}
