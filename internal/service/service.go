package service

import (
	"context"
	"time"

	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const pageSize = 10

type Service struct {
	repo   Repository
	msgs   Messages
	push   Dispatcher
	cache  *redis.Client
	logger *utils.Logger
}

// Repository is the persistence contract the workflows run against. It is
// implemented by repository.Repository; methods taking a tx participate in
// the caller's database transaction when tx is non-nil.
type Repository interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User, tx *gorm.DB) error
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	CountUsersByRole(ctx context.Context, role models.Role) (int64, error)
	DeleteUserCascade(ctx context.Context, tx *gorm.DB, userID uint) error

	GetWalletByChild(ctx context.Context, childID uint, tx *gorm.DB) (*models.Wallet, error)
	CreateWallet(ctx context.Context, wallet *models.Wallet, tx *gorm.DB) error
	UpdateWalletBalance(ctx context.Context, tx *gorm.DB, walletID uint, balance decimal.Decimal) error
	CreateTransaction(ctx context.Context, txn *models.Transaction, tx *gorm.DB) error
	ListTransactionsByChild(ctx context.Context, childID uint, limit, offset int) ([]*models.Transaction, error)
	SumTransactionsByChild(ctx context.Context, childID uint) (decimal.Decimal, error)

	GetChallenge(ctx context.Context, id uint) (*models.Challenge, error)
	CreateChallenge(ctx context.Context, challenge *models.Challenge) error
	UpdateChallenge(ctx context.Context, challenge *models.Challenge) error
	DeleteChallenge(ctx context.Context, id uint) error
	ChallengeReferenceCount(ctx context.Context, id uint) (int64, error)
	ListVisibleChallenges(ctx context.Context, limit, offset int) ([]*models.Challenge, error)
	ListActiveChallenges(ctx context.Context) ([]*models.Challenge, error)

	CreateRequest(ctx context.Context, request *models.OperationRequest, tx *gorm.DB) error
	GetPendingRequest(ctx context.Context, id uint, tx *gorm.DB) (*models.OperationRequest, error)
	UpdateRequest(ctx context.Context, request *models.OperationRequest, tx *gorm.DB) error
	ListRequestsByChild(ctx context.Context, childID uint, limit, offset int) ([]*models.OperationRequest, error)
	ListPendingRequests(ctx context.Context, limit, offset int) ([]*models.OperationRequest, error)
	CountPendingRequestsByChild(ctx context.Context, childID uint) (int64, error)

	CreateRecurring(ctx context.Context, item *models.RecurringMovement) error
	GetVisibleRecurring(ctx context.Context, id uint) (*models.RecurringMovement, error)
	UpdateRecurring(ctx context.Context, item *models.RecurringMovement, tx *gorm.DB) error
	DeleteRecurring(ctx context.Context, id uint) error
	ListDueRecurring(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*models.RecurringMovement, error)
	ListVisibleRecurring(ctx context.Context, limit, offset int) ([]*models.RecurringMovement, error)

	CreateNotification(ctx context.Context, notification *models.Notification, tx *gorm.DB) error
	ListUnreadNotifications(ctx context.Context, userID uint, limit int) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, ids []uint) error
	GetPushSubscriptionByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	CreatePushSubscription(ctx context.Context, sub *models.PushSubscription) error
	UpdatePushSubscription(ctx context.Context, sub *models.PushSubscription) error

	BeginTransaction(ctx context.Context) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

// Dispatcher pushes a stored notification out to a user's delivery endpoints.
// Delivery is fire-and-forget: implementations absorb their own failures and
// must never block or undo the ledger work that triggered them.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID uint, kind models.NotificationKind, message string)
}

func NewService(repo Repository, msgs Messages, push Dispatcher, cache *redis.Client, logger *utils.Logger) *Service {
	if msgs == nil {
		msgs = EnglishMessages{}
	}
	return &Service{
		repo:   repo,
		msgs:   msgs,
		push:   push,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) User(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}
