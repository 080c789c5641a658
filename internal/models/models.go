package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Username          string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	PasswordHash      string `gorm:"size:255;not null" json:"-"`
	Role              Role   `gorm:"size:20;not null" json:"role"`
	PreferredLanguage string `gorm:"size:5" json:"preferred_language"`
}

// Wallet is the per-child balance cache. Its balance must always equal the
// sum of the child's transaction amounts; it is only mutated through a
// ledger posting.
type Wallet struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	ChildID uint            `gorm:"uniqueIndex;not null" json:"child_id"`
	Balance decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"balance"`

	Child *User `gorm:"foreignKey:ChildID" json:"child,omitempty"`
}

// Transaction is an immutable ledger entry. Rows are never updated or
// deleted after creation (except the cascade when a child is removed).
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ChildID     uint            `gorm:"index;not null" json:"child_id"`
	Kind        TransactionKind `gorm:"size:40;not null" json:"kind"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description string          `gorm:"size:255;not null" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	// CreatedBy is nil for system-generated postings.
	CreatedBy *uint `json:"created_by,omitempty"`
}

type Challenge struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:120;not null" json:"name"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Active    bool            `gorm:"not null;default:true" json:"active"`
	Hidden    bool            `gorm:"not null;default:false" json:"hidden"`
	CreatedAt time.Time       `json:"created_at"`
}

type OperationRequest struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Type        RequestType     `gorm:"size:20;not null" json:"type"`
	Status      RequestStatus   `gorm:"size:20;not null;default:pending" json:"status"`
	ChildID     uint            `gorm:"index;not null" json:"child_id"`
	ChallengeID *uint           `json:"challenge_id,omitempty"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description string          `gorm:"size:255;not null" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedBy  *uint           `json:"reviewed_by,omitempty"`

	Child     *User      `gorm:"foreignKey:ChildID" json:"child,omitempty"`
	Challenge *Challenge `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
}

// RecurringMovement is a standing instruction re-applied on a fixed period
// offset. NextRunAt always advances relative to its previous value, one
// period per processed occurrence.
type RecurringMovement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ChildID     uint            `gorm:"index;not null" json:"child_id"`
	Movement    Movement        `gorm:"size:20;not null" json:"movement"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Frequency   Frequency       `gorm:"size:20;not null" json:"frequency"`
	Description string          `gorm:"size:255;not null" json:"description"`
	DepositMode DepositMode     `gorm:"size:20;not null;default:free" json:"deposit_mode"`
	ChallengeID *uint           `json:"challenge_id,omitempty"`
	NextRunAt   time.Time       `gorm:"index;not null" json:"next_run_at"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	Hidden      bool            `gorm:"not null;default:false" json:"hidden"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   uint            `gorm:"not null" json:"created_by"`

	Child     *User      `gorm:"foreignKey:ChildID" json:"child,omitempty"`
	Challenge *Challenge `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
}

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"index;not null" json:"user_id"`
	Kind      NotificationKind `gorm:"size:40;not null" json:"kind"`
	Message   string           `gorm:"size:255;not null" json:"message"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

type PushSubscription struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Endpoint   string    `gorm:"uniqueIndex;size:512;not null" json:"endpoint"`
	P256dh     string    `gorm:"size:255;not null" json:"p256dh"`
	Auth       string    `gorm:"size:255;not null" json:"auth"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
