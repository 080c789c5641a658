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

func TestChildDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "10.00")

	_, err := env.svc.CreateChallenge(ctx, "dishes", dec("2.00"))
	require.NoError(t, err)
	_, err = env.svc.SubmitWithdrawalRequest(ctx, child, dec("1.00"), "")
	require.NoError(t, err)

	dash, err := env.svc.ChildDashboard(ctx, child.ID, 1)
	require.NoError(t, err)
	assert.True(t, dash.Wallet.Balance.Equal(dec("10.00")))
	assert.Len(t, dash.Challenges, 1)
	assert.Len(t, dash.Requests, 1)
	assert.Len(t, dash.Transactions, 1)
}

func TestParentDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	kid := env.seedChild(t, parent, "kid", "5.00")
	env.seedChild(t, parent, "sibling", "0")

	_, err := env.svc.SubmitDepositRequest(ctx, kid, dec("2.00"), "")
	require.NoError(t, err)

	dash, err := env.svc.ParentDashboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, dash.Children, 2)
	require.Len(t, dash.PendingRequests, 1)

	byName := map[string]service.ChildRow{}
	for _, row := range dash.Children {
		byName[row.Child.Username] = row
	}
	assert.EqualValues(t, 1, byName["kid"].PendingCount)
	assert.True(t, byName["kid"].Wallet.Balance.Equal(dec("5.00")))
	assert.EqualValues(t, 0, byName["sibling"].PendingCount)

	// Pending list carries the child for display.
	require.NotNil(t, dash.PendingRequests[0].Child)
	assert.Equal(t, "kid", dash.PendingRequests[0].Child.Username)
}

func TestChildTransactionsRequiresChild(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "10.00")

	txns, err := env.svc.ChildTransactions(ctx, child.ID, 1)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	_, err = env.svc.ChildTransactions(ctx, parent.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.svc.ChildTransactions(ctx, 999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVisibleRecurringExcludesHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "0")
	challenge, err := env.svc.CreateChallenge(ctx, "reading", dec("1.00"))
	require.NoError(t, err)

	// A challenge-linked item cannot be hard-deleted on backends that
	// enforce the reference, so the workflows fall back to hiding it.
	linked, err := env.svc.CreateRecurring(ctx, parent, service.RecurringInput{
		ChildID:     child.ID,
		Movement:    models.MovementDeposit,
		Amount:      dec("1.00"),
		Frequency:   models.FrequencyWeekly,
		DepositMode: models.DepositModeChallenge,
		ChallengeID: &challenge.ID,
	})
	require.NoError(t, err)
	keeper, err := env.svc.CreateRecurring(ctx, parent, service.RecurringInput{
		ChildID:     child.ID,
		Movement:    models.MovementDeposit,
		Amount:      dec("2.00"),
		Frequency:   models.FrequencyDaily,
		DepositMode: models.DepositModeFree,
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.RecurringMovement{}).
		Where("id = ?", linked.ID).
		Updates(map[string]interface{}{"active": false, "hidden": true}).Error)

	visible, err := env.svc.VisibleRecurring(ctx, 1)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, keeper.ID, visible[0].ID)
}
