package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bbbislomjon-svg/piramida/internal/config"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

// Engine applies all balance mutations. Each operation validates the current
// state and commits its changes as a single unit of work against the
// injected store, so concurrent callers can never double-credit a one-time
// bonus, double-redeem a promo code or overdraw a balance.
type Engine struct {
	store             Store
	tariffs           map[string]config.Tariff
	minWithdrawal     int64
	firstDepositBonus int64
}

func NewEngine(store Store, cfg config.LedgerConfig) *Engine {
	return &Engine{
		store:             store,
		tariffs:           cfg.Tariffs,
		minWithdrawal:     cfg.MinWithdrawal,
		firstDepositBonus: cfg.FirstDepositBonus,
	}
}

// Tariff looks up a catalog entry.
func (e *Engine) Tariff(name string) (config.Tariff, bool) {
	t, ok := e.tariffs[name]
	return t, ok
}

// Tariffs returns the static catalog.
func (e *Engine) Tariffs() map[string]config.Tariff {
	return e.tariffs
}

// MinWithdrawal returns the configured minimum withdrawal amount.
func (e *Engine) MinWithdrawal() int64 {
	return e.minWithdrawal
}

// EnsureUser registers the user on first contact. Repeated calls for the
// same id are no-ops; a later call with a different referrer never changes
// the stored referred-by. Self-referrals are ignored.
func (e *Engine) EnsureUser(ctx context.Context, userID int64, referredBy *int64) (*model.User, error) {
	if referredBy != nil && *referredBy == userID {
		referredBy = nil
	}
	return e.store.EnsureUser(ctx, userID, referredBy)
}

func (e *Engine) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return e.store.GetUser(ctx, userID)
}

// DepositIntent describes a recorded pending deposit.
type DepositIntent struct {
	UserID int64
	Tariff string
	Amount int64
}

// RequestDeposit records a payment intent for the tariff's price. Any
// earlier pending deposit for the user is replaced; the balance is untouched
// until ConfirmDeposit.
func (e *Engine) RequestDeposit(ctx context.Context, userID int64, tariffName string) (*DepositIntent, error) {
	tariff, ok := e.tariffs[tariffName]
	if !ok {
		return nil, ErrUnknownTariff
	}

	err := e.store.Atomically(ctx, func(tx Tx) error {
		if _, err := tx.User(ctx, userID); err != nil {
			return err
		}
		return tx.SetPendingDeposit(ctx, userID, tariff.Price, tariffName)
	})
	if err != nil {
		return nil, err
	}

	return &DepositIntent{UserID: userID, Tariff: tariffName, Amount: tariff.Price}, nil
}

// DepositResult describes a confirmed deposit and the one-time side effects
// it triggered.
type DepositResult struct {
	UserID        int64
	Amount        int64
	Tariff        string
	NewBalance    int64
	FirstDeposit  bool
	ReferrerID    *int64
	ReferralBonus int64
	DepositBonus  int64
}

// ConfirmDeposit credits the pending amount to the user's balance. On the
// user's first completed deposit the same transaction also promotes the
// status to the tariff name, credits the referrer's bonus and referral
// count, and credits the flat first-deposit bonus when configured. The
// first-deposit flag commits together with those credits, so a retry can
// never duplicate them.
func (e *Engine) ConfirmDeposit(ctx context.Context, userID int64) (*DepositResult, error) {
	var result DepositResult

	err := e.store.Atomically(ctx, func(tx Tx) error {
		user, err := tx.User(ctx, userID)
		if err != nil {
			return err
		}
		if !user.HasPendingDeposit() {
			return ErrNoPendingDeposit
		}

		amount := user.PendingAmount
		tariffName := ""
		if user.PendingTariff != nil {
			tariffName = *user.PendingTariff
		}

		if err := tx.ClearPendingDeposit(ctx, userID); err != nil {
			return err
		}
		newBalance, err := tx.ApplyBalance(ctx, userID, amount, model.TransactionTypeDeposit, tariffName)
		if err != nil {
			return err
		}

		result = DepositResult{
			UserID:     userID,
			Amount:     amount,
			Tariff:     tariffName,
			NewBalance: newBalance,
		}

		if user.FirstDepositComplete || tariffName == "" {
			return nil
		}

		result.FirstDeposit = true
		if err := tx.MarkFirstDeposit(ctx, userID, tariffName); err != nil {
			return err
		}

		// Tariff may have left the catalog since the intent was recorded;
		// the deposit still counts, only the referral bonus is skipped.
		// Same when the stored referrer id was never registered: the start
		// payload is forgeable, so a missing referrer is not an error.
		tariff, known := e.tariffs[tariffName]
		if known && user.ReferredBy != nil && tariff.RefBonus > 0 {
			referrer := *user.ReferredBy
			_, err := tx.ApplyBalance(ctx, referrer, tariff.RefBonus, model.TransactionTypeReferralBonus, strconv.FormatInt(userID, 10))
			switch {
			case errors.Is(err, ErrUserNotFound):
			case err != nil:
				return fmt.Errorf("credit referrer %d: %w", referrer, err)
			default:
				if err := tx.IncrementReferralCount(ctx, referrer); err != nil {
					return err
				}
				result.ReferrerID = user.ReferredBy
				result.ReferralBonus = tariff.RefBonus
			}
		}

		if e.firstDepositBonus > 0 {
			newBalance, err = tx.ApplyBalance(ctx, userID, e.firstDepositBonus, model.TransactionTypeFirstDepositBonus, tariffName)
			if err != nil {
				return err
			}
			result.DepositBonus = e.firstDepositBonus
			result.NewBalance = newBalance
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// PromoResult describes a successful promo redemption.
type PromoResult struct {
	UserID     int64
	Code       string
	Amount     int64
	NewBalance int64
}

// RedeemPromo credits the code's reward once per user. The remaining-uses
// decrement, the (user, code) usage record and the credit commit together;
// concurrent redemptions of the last use cannot both succeed.
func (e *Engine) RedeemPromo(ctx context.Context, userID int64, code string) (*PromoResult, error) {
	var result PromoResult

	err := e.store.Atomically(ctx, func(tx Tx) error {
		if _, err := tx.User(ctx, userID); err != nil {
			return err
		}
		promo, err := tx.PromoCode(ctx, code)
		if err != nil {
			return err
		}
		used, err := tx.PromoUsed(ctx, userID, code)
		if err != nil {
			return err
		}
		if used {
			return ErrPromoAlreadyUsed
		}
		if promo.Exhausted() {
			return ErrPromoExhausted
		}

		consumed, err := tx.ConsumePromoUse(ctx, code)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrPromoExhausted
		}
		if err := tx.RecordPromoUse(ctx, userID, code); err != nil {
			return err
		}
		newBalance, err := tx.ApplyBalance(ctx, userID, promo.Amount, model.TransactionTypePromoCode, code)
		if err != nil {
			return err
		}

		result = PromoResult{UserID: userID, Code: code, Amount: promo.Amount, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// BonusResult describes a successful channel-bonus claim.
type BonusResult struct {
	UserID     int64
	ChannelID  string
	Bonus      int64
	NewBalance int64
}

// ClaimChannelBonus credits the channel's flat bonus once per user.
// Membership verification is the caller's job (it owns the chat API); the
// verified result is passed in as a precondition.
func (e *Engine) ClaimChannelBonus(ctx context.Context, userID int64, channelID string, subscribed bool) (*BonusResult, error) {
	if !subscribed {
		return nil, ErrNotSubscribed
	}

	var result BonusResult

	err := e.store.Atomically(ctx, func(tx Tx) error {
		if _, err := tx.User(ctx, userID); err != nil {
			return err
		}
		channel, err := tx.BonusChannel(ctx, channelID)
		if err != nil {
			return err
		}
		claimed, err := tx.BonusClaimed(ctx, userID, channelID)
		if err != nil {
			return err
		}
		if claimed {
			return ErrBonusAlreadyClaimed
		}

		if err := tx.RecordBonusClaim(ctx, userID, channelID); err != nil {
			return err
		}
		newBalance, err := tx.ApplyBalance(ctx, userID, channel.Bonus, model.TransactionTypeChannelBonus, channelID)
		if err != nil {
			return err
		}

		result = BonusResult{UserID: userID, ChannelID: channelID, Bonus: channel.Bonus, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RequestWithdrawal opens a pending payout request for the user's entire
// current balance. Nothing is debited yet; the debit happens at approval,
// where the balance is validated again.
func (e *Engine) RequestWithdrawal(ctx context.Context, userID int64, destination string) (*model.WithdrawalRequest, error) {
	var request *model.WithdrawalRequest

	err := e.store.Atomically(ctx, func(tx Tx) error {
		user, err := tx.User(ctx, userID)
		if err != nil {
			return err
		}
		if user.Balance < e.minWithdrawal {
			return ErrInsufficientBalance
		}

		id, err := tx.CreateWithdrawal(ctx, userID, user.Balance, destination)
		if err != nil {
			return err
		}
		request = &model.WithdrawalRequest{
			ID:          id,
			UserID:      userID,
			Amount:      user.Balance,
			Destination: destination,
			Status:      model.WithdrawalStatusPending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// WithdrawalResult describes an approved withdrawal.
type WithdrawalResult struct {
	Request    *model.WithdrawalRequest
	NewBalance int64
}

// ApproveWithdrawal debits the requested amount and marks the request done.
// The balance is re-validated under lock: if it dropped below the snapshot
// since the request was made, the approval fails and the request stays
// pending. Approving the same request twice fails with ErrAlreadyProcessed.
func (e *Engine) ApproveWithdrawal(ctx context.Context, requestID int64) (*WithdrawalResult, error) {
	var result WithdrawalResult

	err := e.store.Atomically(ctx, func(tx Tx) error {
		request, err := tx.Withdrawal(ctx, requestID)
		if err != nil {
			return err
		}
		if !request.Pending() {
			return ErrAlreadyProcessed
		}
		user, err := tx.User(ctx, request.UserID)
		if err != nil {
			return err
		}
		if user.Balance < request.Amount {
			return ErrInsufficientBalance
		}

		if err := tx.MarkWithdrawalDone(ctx, requestID); err != nil {
			return err
		}
		newBalance, err := tx.ApplyBalance(ctx, request.UserID, -request.Amount, model.TransactionTypeWithdrawal, strconv.FormatInt(requestID, 10))
		if err != nil {
			return err
		}

		request.Status = model.WithdrawalStatusDone
		result = WithdrawalResult{Request: request, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
