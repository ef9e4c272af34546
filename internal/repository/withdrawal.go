package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func (r *Repository) GetWithdrawal(ctx context.Context, id int64) (*model.WithdrawalRequest, error) {
	var request model.WithdrawalRequest
	err := r.db.GetContext(ctx, &request, "SELECT * FROM withdrawals WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *Repository) ListPendingWithdrawals(ctx context.Context) ([]model.WithdrawalRequest, error) {
	var requests []model.WithdrawalRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM withdrawals
		WHERE status = 'pending'
		ORDER BY created_at`)
	return requests, err
}

func (r *Repository) ListUserWithdrawals(ctx context.Context, userID int64) ([]model.WithdrawalRequest, error) {
	var requests []model.WithdrawalRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	return requests, err
}
