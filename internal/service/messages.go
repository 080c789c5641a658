package service

import "fmt"

// MessageKey identifies a user-facing text produced by the workflows.
type MessageKey string

const (
	MsgCompletedChallenge     MessageKey = "completed_challenge"
	MsgWithdrawalRequest      MessageKey = "withdrawal_request"
	MsgDepositRequest         MessageKey = "generic_deposit_request"
	MsgRecurringMovement      MessageKey = "recurring_movement"
	MsgDepositLinkedChallenge MessageKey = "deposit_linked_challenge"
	MsgManualMovement         MessageKey = "manual_parent_movement"
	MsgInitialBalance         MessageKey = "initial_balance"

	MsgNotifRewardRequest    MessageKey = "notif_reward_request"
	MsgNotifWithdrawRequest  MessageKey = "notif_withdraw_request"
	MsgNotifDepositRequest   MessageKey = "notif_deposit_request"
	MsgNotifRequestRejected  MessageKey = "notif_request_rejected"
	MsgNotifWalletCredit     MessageKey = "notif_wallet_credit"
	MsgNotifWalletDebit      MessageKey = "notif_wallet_debit"
	MsgNotifParentMovement   MessageKey = "notif_parent_movement"
	MsgNotifRecurringApplied MessageKey = "notif_recurring_applied"
	MsgNotifRecurringFailed  MessageKey = "notif_recurring_failed"
)

// Messages resolves a message key into user-facing text. Real localization
// lives outside the core; the default catalog formats plain English.
type Messages interface {
	Format(key MessageKey, args ...any) string
}

var englishCatalog = map[MessageKey]string{
	MsgCompletedChallenge:     "Completed challenge: %s",
	MsgWithdrawalRequest:      "Withdrawal request",
	MsgDepositRequest:         "Deposit request",
	MsgRecurringMovement:      "Recurring movement",
	MsgDepositLinkedChallenge: "Deposit linked to challenge %s",
	MsgManualMovement:         "Manual movement",
	MsgInitialBalance:         "Initial balance",

	MsgNotifRewardRequest:    "%s asks to redeem %q for %s",
	MsgNotifWithdrawRequest:  "%s asks to withdraw %s",
	MsgNotifDepositRequest:   "%s asks to deposit %s",
	MsgNotifRequestRejected:  "Your request %q was rejected",
	MsgNotifWalletCredit:     "Your wallet was credited %s",
	MsgNotifWalletDebit:      "%s was debited from your wallet",
	MsgNotifParentMovement:   "Movement of %s: %s",
	MsgNotifRecurringApplied: "Recurring movement of %s applied: %s",
	MsgNotifRecurringFailed:  "Recurring withdrawal of %s for %s skipped: insufficient balance",
}

// EnglishMessages is the fallback catalog used when no translator is wired.
type EnglishMessages struct{}

func (EnglishMessages) Format(key MessageKey, args ...any) string {
	template, ok := englishCatalog[key]
	if !ok {
		return string(key)
	}
	return fmt.Sprintf(template, args...)
}
