package model

import (
	"time"
)

// PromoCode is a limited-use code redeemable once per user for a flat
// balance credit. RemainingUses is decremented on every successful
// redemption; the code is exhausted at zero.
type PromoCode struct {
	Code          string    `json:"code" db:"code"`
	Amount        int64     `json:"amount" db:"amount"`
	RemainingUses int       `json:"remaining_uses" db:"remaining_uses"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

func (p *PromoCode) Exhausted() bool {
	return p.RemainingUses <= 0
}

// PromoUse records that a user redeemed a code. A (user, code) pair exists
// at most once.
type PromoUse struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
