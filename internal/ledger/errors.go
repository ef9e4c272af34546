package ledger

import "errors"

// Every engine operation returns either a result or one of these. All are
// terminal and non-retryable; the calling layer decides how to present them.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUnknownTariff       = errors.New("unknown tariff")
	ErrNoPendingDeposit    = errors.New("no pending deposit")
	ErrUnknownPromo        = errors.New("unknown promo code")
	ErrPromoAlreadyUsed    = errors.New("promo code already used")
	ErrPromoExhausted      = errors.New("promo code exhausted")
	ErrUnknownChannel      = errors.New("unknown bonus channel")
	ErrNotSubscribed       = errors.New("not subscribed to channel")
	ErrBonusAlreadyClaimed = errors.New("channel bonus already claimed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRequestNotFound     = errors.New("withdrawal request not found")
	ErrAlreadyProcessed    = errors.New("withdrawal request already processed")
)
