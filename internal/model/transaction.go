package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDeposit           TransactionType = "deposit"
	TransactionTypeReferralBonus     TransactionType = "referral_bonus"
	TransactionTypeFirstDepositBonus TransactionType = "first_deposit_bonus"
	TransactionTypePromoCode         TransactionType = "promo_code"
	TransactionTypeChannelBonus      TransactionType = "channel_bonus"
	TransactionTypeWithdrawal        TransactionType = "withdrawal"
)

// BalanceTransaction is one journal entry. Every balance change commits a
// row in the same unit of work that changed the balance.
type BalanceTransaction struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	Amount        int64           `json:"amount" db:"amount"` // positive = credit, negative = debit
	Type          TransactionType `json:"type" db:"type"`
	Reference     *string         `json:"reference,omitempty" db:"reference"`
	BalanceBefore int64           `json:"balance_before" db:"balance_before"`
	BalanceAfter  int64           `json:"balance_after" db:"balance_after"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
