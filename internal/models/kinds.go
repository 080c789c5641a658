package models

// Closed enumerations for every classification the workflows branch on.

type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

type RequestType string

const (
	RequestReward     RequestType = "reward"
	RequestWithdrawal RequestType = "withdrawal"
	RequestDeposit    RequestType = "deposit"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

type Movement string

const (
	MovementDeposit  Movement = "deposit"
	MovementWithdraw Movement = "withdraw"
)

type DepositMode string

const (
	DepositModeFree      DepositMode = "free"
	DepositModeChallenge DepositMode = "challenge"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

type TransactionKind string

const (
	KindParentDeposit          TransactionKind = "parent_deposit"
	KindParentDepositChallenge TransactionKind = "parent_deposit_challenge"
	KindParentWithdrawal       TransactionKind = "parent_withdrawal"
	KindReward                 TransactionKind = "reward"
	KindRequestedDeposit       TransactionKind = "requested_deposit"
	KindWithdrawal             TransactionKind = "withdrawal"
	KindRecurringDeposit       TransactionKind = "recurring_deposit"
	KindRecurringWithdraw      TransactionKind = "recurring_withdraw"
)

// RecurringKind maps a movement direction to its ledger kind tag.
func RecurringKind(m Movement) TransactionKind {
	if m == MovementDeposit {
		return KindRecurringDeposit
	}
	return KindRecurringWithdraw
}

type NotificationKind string

const (
	NotifApprovalRequired NotificationKind = "approval_required"
	NotifRequestRejected  NotificationKind = "request_rejected"
	NotifWalletCredit     NotificationKind = "wallet_credit"
	NotifWalletDebit      NotificationKind = "wallet_debit"
	NotifRecurringFailed  NotificationKind = "recurring_failed"
)
