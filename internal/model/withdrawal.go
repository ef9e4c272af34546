package model

import (
	"time"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending WithdrawalStatus = "pending"
	WithdrawalStatusDone    WithdrawalStatus = "done"
)

// WithdrawalRequest holds a payout request. Amount snapshots the user's
// balance at request time; the debit happens only when the request moves
// pending -> done, after the balance is re-validated.
type WithdrawalRequest struct {
	ID          int64            `json:"id" db:"id"`
	UserID      int64            `json:"user_id" db:"user_id"`
	Amount      int64            `json:"amount" db:"amount"`
	Destination string           `json:"destination" db:"destination"`
	Status      WithdrawalStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

func (w *WithdrawalRequest) Pending() bool {
	return w.Status == WithdrawalStatusPending
}
