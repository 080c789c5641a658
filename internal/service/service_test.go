package service_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/internal/repository"
	"github.com/pocketkid/pocketkid/internal/service"
	"github.com/pocketkid/pocketkid/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

type dispatchEntry struct {
	UserID  uint
	Kind    models.NotificationKind
	Message string
}

// dispatchRecorder stands in for the push transports and records every
// dispatch it receives.
type dispatchRecorder struct {
	mu      sync.Mutex
	entries []dispatchEntry
}

func (r *dispatchRecorder) Dispatch(_ context.Context, userID uint, kind models.NotificationKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, dispatchEntry{UserID: userID, Kind: kind, Message: message})
}

func (r *dispatchRecorder) byKind(kind models.NotificationKind) []dispatchEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dispatchEntry
	for _, e := range r.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svc  *service.Service
	db   *gorm.DB
	push *dispatchRecorder
}

// newTestEnv wires the service against a private in-memory database. The
// shared-cache DSN lets the repository's explicit transactions coexist with
// queries on the base connection.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:pocketkid_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Challenge{},
		&models.Transaction{},
		&models.OperationRequest{},
		&models.RecurringMovement{},
		&models.Notification{},
		&models.PushSubscription{},
	))

	logger := utils.InitLogger("error")
	push := &dispatchRecorder{}
	repo := repository.NewRepository(db, logger)
	svc := service.NewService(repo, service.EnglishMessages{}, push, nil, logger)
	return &testEnv{svc: svc, db: db, push: push}
}

func (e *testEnv) seedParent(t *testing.T, username string) *models.User {
	t.Helper()
	parent, err := e.svc.CreateParent(context.Background(), username, "secret", "en")
	require.NoError(t, err)
	return parent
}

func (e *testEnv) seedChild(t *testing.T, parent *models.User, username string, balance string) *models.User {
	t.Helper()
	child, err := e.svc.CreateChild(context.Background(), parent, username, "secret", "en", dec(balance))
	require.NoError(t, err)
	return child
}

func (e *testEnv) transactionCount(t *testing.T, childID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Transaction{}).Where("child_id = ?", childID).Count(&count).Error)
	return count
}

func (e *testEnv) balance(t *testing.T, childID uint) decimal.Decimal {
	t.Helper()
	balance, err := e.svc.Balance(context.Background(), childID)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) requireAudited(t *testing.T, childID uint) {
	t.Helper()
	ok, err := e.svc.AuditBalance(context.Background(), childID)
	require.NoError(t, err)
	require.True(t, ok, "wallet balance diverged from transaction sum for child %d", childID)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}
