package service_test

import (
	"context"
	"testing"

	"github.com/pocketkid/pocketkid/internal/apperr"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRefusedOnceParentExists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Setup(ctx, "dad", "secret", "en")
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, first.Role)

	_, err = env.svc.Setup(ctx, "mom", "secret", "en")
	assert.ErrorIs(t, err, apperr.ErrParentExists)
}

func TestCreateChildWithInitialBalance(t *testing.T) {
	env := newTestEnv(t)
	parent := env.seedParent(t, "dad")

	child := env.seedChild(t, parent, "kid", "20.00")

	assert.True(t, env.balance(t, child.ID).Equal(dec("20.00")))
	assert.EqualValues(t, 1, env.transactionCount(t, child.ID))
	env.requireAudited(t, child.ID)

	var txn models.Transaction
	require.NoError(t, env.db.First(&txn, "child_id = ?", child.ID).Error)
	assert.Equal(t, models.KindParentDeposit, txn.Kind)
	require.NotNil(t, txn.CreatedBy)
	assert.Equal(t, parent.ID, *txn.CreatedBy)
}

func TestCreateChildZeroBalanceHasNoTransaction(t *testing.T) {
	env := newTestEnv(t)
	parent := env.seedParent(t, "dad")

	child := env.seedChild(t, parent, "kid", "0")

	assert.True(t, env.balance(t, child.ID).IsZero())
	assert.EqualValues(t, 0, env.transactionCount(t, child.ID))
	env.requireAudited(t, child.ID)
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")

	_, err := env.svc.CreateChild(ctx, parent, "", "secret", "en", dec("0"))
	assert.ErrorIs(t, err, apperr.ErrInvalidUsername)

	_, err = env.svc.CreateChild(ctx, parent, "kid", "abc", "en", dec("0"))
	assert.ErrorIs(t, err, apperr.ErrPasswordTooShort)

	_, err = env.svc.CreateChild(ctx, parent, "dad", "secret", "en", dec("0"))
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)

	_, err = env.svc.CreateChild(ctx, parent, "kid", "secret", "en", dec("-1"))
	assert.ErrorIs(t, err, apperr.ErrInvalidAmount)

	child := env.seedChild(t, parent, "kid", "0")
	_, err = env.svc.CreateChild(ctx, child, "other", "secret", "en", dec("0"))
	assert.ErrorIs(t, err, apperr.ErrInvalidAction)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedParent(t, "dad")

	user, err := env.svc.Authenticate(ctx, "dad", "secret")
	require.NoError(t, err)
	assert.Equal(t, "dad", user.Username)

	_, err = env.svc.Authenticate(ctx, "dad", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = env.svc.Authenticate(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")

	assert.ErrorIs(t, env.svc.ChangePassword(ctx, parent, "wrong", "newpass"), apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, env.svc.ChangePassword(ctx, parent, "secret", "abc"), apperr.ErrPasswordTooShort)

	require.NoError(t, env.svc.ChangePassword(ctx, parent, "secret", "newpass"))
	_, err := env.svc.Authenticate(ctx, "dad", "newpass")
	assert.NoError(t, err)
}

func TestResetChildPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "0")

	require.NoError(t, env.svc.ResetChildPassword(ctx, parent, child.ID, "newpass"))
	_, err := env.svc.Authenticate(ctx, "kid", "newpass")
	assert.NoError(t, err)

	assert.ErrorIs(t, env.svc.ResetChildPassword(ctx, parent, parent.ID, "newpass"), apperr.ErrNotFound)
	assert.ErrorIs(t, env.svc.ResetChildPassword(ctx, child, child.ID, "newpass"), apperr.ErrInvalidAction)
}

func TestDeleteChildCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")
	child := env.seedChild(t, parent, "kid", "10.00")

	_, err := env.svc.SubmitWithdrawalRequest(ctx, child, dec("2.00"), "")
	require.NoError(t, err)
	require.NoError(t, env.svc.SavePushSubscription(ctx, child.ID, "https://push.example/ep1", "p256", "auth"))

	require.NoError(t, env.svc.DeleteChild(ctx, parent, child.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", child.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Wallet{}).Where("child_id = ?", child.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Transaction{}).Where("child_id = ?", child.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.OperationRequest{}).Where("child_id = ?", child.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.PushSubscription{}).Where("user_id = ?", child.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Notification{}).Where("user_id = ?", child.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteParentGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dad := env.seedParent(t, "dad")

	assert.ErrorIs(t, env.svc.DeleteParent(ctx, dad, dad.ID), apperr.ErrSelfDelete)

	mom := env.seedParent(t, "mom")
	require.NoError(t, env.svc.DeleteParent(ctx, dad, mom.ID))

	// dad is the only parent again.
	other := env.seedParent(t, "aunt")
	require.NoError(t, env.svc.DeleteParent(ctx, other, dad.ID))
	assert.ErrorIs(t, env.svc.DeleteParent(ctx, other, other.ID), apperr.ErrSelfDelete)

	child := env.seedChild(t, other, "kid", "0")
	assert.ErrorIs(t, env.svc.DeleteParent(ctx, other, child.ID), apperr.ErrNotFound)
}

func TestDeleteLastParentRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dad := env.seedParent(t, "dad")
	mom := env.seedParent(t, "mom")

	require.NoError(t, env.svc.DeleteParent(ctx, dad, mom.ID))

	ghost := &models.User{ID: 999, Role: models.RoleParent}
	err := env.svc.DeleteParent(ctx, ghost, dad.ID)
	assert.ErrorIs(t, err, apperr.ErrLastParent)
}

func TestSetPreferredLanguage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	parent := env.seedParent(t, "dad")

	require.NoError(t, env.svc.SetPreferredLanguage(ctx, parent, " DE "))
	reloaded, err := env.svc.User(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "de", reloaded.PreferredLanguage)

	require.NoError(t, env.svc.SetPreferredLanguage(ctx, parent, ""))
	reloaded, err = env.svc.User(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "en", reloaded.PreferredLanguage)
}
