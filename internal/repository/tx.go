package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

type sqlTx struct {
	tx *sqlx.Tx
}

var _ ledger.Tx = (*sqlTx)(nil)

func (t *sqlTx) User(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := t.tx.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1 FOR UPDATE", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (t *sqlTx) ApplyBalance(ctx context.Context, userID int64, delta int64, txType model.TransactionType, reference string) (int64, error) {
	var before int64
	err := t.tx.GetContext(ctx, &before, "SELECT balance FROM users WHERE id = $1 FOR UPDATE", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ledger.ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	after := before + delta
	if after < 0 {
		return 0, ledger.ErrInsufficientBalance
	}

	_, err = t.tx.ExecContext(ctx,
		"UPDATE users SET balance = $2, updated_at = NOW() WHERE id = $1", userID, after)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}

	var ref *string
	if reference != "" {
		ref = &reference
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO balance_transactions (id, user_id, amount, type, reference, balance_before, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), userID, delta, txType, ref, before, after)
	if err != nil {
		return 0, fmt.Errorf("failed to create transaction record: %w", err)
	}

	return after, nil
}

func (t *sqlTx) SetPendingDeposit(ctx context.Context, userID int64, amount int64, tariff string) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE users SET pending_amount = $2, pending_tariff = $3, updated_at = NOW()
		WHERE id = $1`, userID, amount, tariff)
	return err
}

func (t *sqlTx) ClearPendingDeposit(ctx context.Context, userID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE users SET pending_amount = 0, pending_tariff = NULL, updated_at = NOW()
		WHERE id = $1`, userID)
	return err
}

func (t *sqlTx) MarkFirstDeposit(ctx context.Context, userID int64, status string) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE users SET first_deposit_complete = TRUE, status = $2, updated_at = NOW()
		WHERE id = $1`, userID, status)
	return err
}

func (t *sqlTx) IncrementReferralCount(ctx context.Context, userID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE users SET referral_count = referral_count + 1, updated_at = NOW()
		WHERE id = $1`, userID)
	return err
}

func (t *sqlTx) PromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := t.tx.GetContext(ctx, &promo, "SELECT * FROM promo_codes WHERE code = $1 FOR UPDATE", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrUnknownPromo
		}
		return nil, err
	}
	return &promo, nil
}

func (t *sqlTx) ConsumePromoUse(ctx context.Context, code string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE promo_codes SET remaining_uses = remaining_uses - 1
		WHERE code = $1 AND remaining_uses > 0`, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *sqlTx) PromoUsed(ctx context.Context, userID int64, code string) (bool, error) {
	var count int
	err := t.tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM promo_uses WHERE user_id = $1 AND code = $2`, userID, code)
	return count > 0, err
}

func (t *sqlTx) RecordPromoUse(ctx context.Context, userID int64, code string) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO promo_uses (user_id, code)
		VALUES ($1, $2)
		ON CONFLICT (user_id, code) DO NOTHING`, userID, code)
	if err != nil {
		return fmt.Errorf("failed to record promo use: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrPromoAlreadyUsed
	}
	return nil
}

func (t *sqlTx) BonusChannel(ctx context.Context, channelID string) (*model.BonusChannel, error) {
	var channel model.BonusChannel
	err := t.tx.GetContext(ctx, &channel, "SELECT * FROM bonus_channels WHERE channel_id = $1", channelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrUnknownChannel
		}
		return nil, err
	}
	return &channel, nil
}

func (t *sqlTx) BonusClaimed(ctx context.Context, userID int64, channelID string) (bool, error) {
	var count int
	err := t.tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM bonus_claims WHERE user_id = $1 AND channel_id = $2`, userID, channelID)
	return count > 0, err
}

func (t *sqlTx) RecordBonusClaim(ctx context.Context, userID int64, channelID string) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO bonus_claims (user_id, channel_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, channel_id) DO NOTHING`, userID, channelID)
	if err != nil {
		return fmt.Errorf("failed to record bonus claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrBonusAlreadyClaimed
	}
	return nil
}

func (t *sqlTx) CreateWithdrawal(ctx context.Context, userID int64, amount int64, destination string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO withdrawals (user_id, amount, destination, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id`, userID, amount, destination).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return id, nil
}

func (t *sqlTx) Withdrawal(ctx context.Context, requestID int64) (*model.WithdrawalRequest, error) {
	var request model.WithdrawalRequest
	err := t.tx.GetContext(ctx, &request, "SELECT * FROM withdrawals WHERE id = $1 FOR UPDATE", requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (t *sqlTx) MarkWithdrawalDone(ctx context.Context, requestID int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE withdrawals SET status = 'done', completed_at = NOW()
		WHERE id = $1 AND status = 'pending'`, requestID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrAlreadyProcessed
	}
	return nil
}
