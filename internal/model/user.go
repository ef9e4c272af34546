package model

import (
	"time"
)

// StatusGuest is the status of a user who has not completed a deposit yet.
// A first confirmed deposit promotes the status to the tariff name; the
// status never regresses after that.
const StatusGuest = "GUEST"

type User struct {
	ID                   int64     `json:"id" db:"id"`
	Balance              int64     `json:"balance" db:"balance"` // currency minor units
	ReferralCount        int       `json:"referral_count" db:"referral_count"`
	ReferredBy           *int64    `json:"referred_by,omitempty" db:"referred_by"`
	Status               string    `json:"status" db:"status"`
	PendingAmount        int64     `json:"pending_amount" db:"pending_amount"`
	PendingTariff        *string   `json:"pending_tariff,omitempty" db:"pending_tariff"`
	FirstDepositComplete bool      `json:"first_deposit_complete" db:"first_deposit_complete"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// HasPendingDeposit reports whether the user has an unconfirmed deposit
// intent awaiting admin approval.
func (u *User) HasPendingDeposit() bool {
	return u.PendingAmount > 0
}
