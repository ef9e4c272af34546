package ledger

import (
	"context"

	"github.com/bbbislomjon-svg/piramida/internal/model"
)

// Store is the persistence boundary the engine runs against. All mutations
// happen through Atomically: the callback either commits as a whole or
// leaves no trace. Implementations must make the Tx primitives safe against
// concurrent transactions touching the same rows (row locks or equivalent).
type Store interface {
	// EnsureUser creates the user if absent and returns the stored record.
	// Repeated calls are no-ops; referredBy is persisted only on creation.
	EnsureUser(ctx context.Context, userID int64, referredBy *int64) (*model.User, error)

	// GetUser returns ErrUserNotFound when the user does not exist.
	GetUser(ctx context.Context, userID int64) (*model.User, error)

	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the primitive reads and writes available inside one atomic unit
// of work. Reads lock the rows they return for the duration of the
// transaction.
type Tx interface {
	// User returns the locked user row or ErrUserNotFound.
	User(ctx context.Context, userID int64) (*model.User, error)

	// ApplyBalance adjusts the user's balance by delta (negative = debit),
	// writes a journal entry and returns the new balance. A debit below zero
	// fails without applying anything.
	ApplyBalance(ctx context.Context, userID int64, delta int64, txType model.TransactionType, reference string) (int64, error)

	SetPendingDeposit(ctx context.Context, userID int64, amount int64, tariff string) error
	ClearPendingDeposit(ctx context.Context, userID int64) error

	// MarkFirstDeposit sets the one-time first-deposit flag and promotes the
	// user's status to the given tariff name.
	MarkFirstDeposit(ctx context.Context, userID int64, status string) error
	IncrementReferralCount(ctx context.Context, userID int64) error

	// PromoCode returns ErrUnknownPromo when the code does not exist.
	PromoCode(ctx context.Context, code string) (*model.PromoCode, error)
	// ConsumePromoUse decrements remaining uses only while they are above
	// zero and reports whether a use was consumed.
	ConsumePromoUse(ctx context.Context, code string) (bool, error)
	PromoUsed(ctx context.Context, userID int64, code string) (bool, error)
	// RecordPromoUse inserts the (user, code) pair, failing with
	// ErrPromoAlreadyUsed when the pair already exists.
	RecordPromoUse(ctx context.Context, userID int64, code string) error

	// BonusChannel returns ErrUnknownChannel when the channel is not in the
	// catalog.
	BonusChannel(ctx context.Context, channelID string) (*model.BonusChannel, error)
	BonusClaimed(ctx context.Context, userID int64, channelID string) (bool, error)
	// RecordBonusClaim inserts the (user, channel) pair, failing with
	// ErrBonusAlreadyClaimed when the pair already exists.
	RecordBonusClaim(ctx context.Context, userID int64, channelID string) error

	CreateWithdrawal(ctx context.Context, userID int64, amount int64, destination string) (int64, error)
	// Withdrawal returns the locked request row or ErrRequestNotFound.
	Withdrawal(ctx context.Context, requestID int64) (*model.WithdrawalRequest, error)
	// MarkWithdrawalDone moves the request pending -> done, failing with
	// ErrAlreadyProcessed when it is not pending anymore.
	MarkWithdrawalDone(ctx context.Context, requestID int64) error
}
