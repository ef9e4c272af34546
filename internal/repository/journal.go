package repository

import (
	"context"

	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func (r *Repository) GetBalanceTransactions(ctx context.Context, userID int64, limit, offset int) ([]model.BalanceTransaction, error) {
	var transactions []model.BalanceTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM balance_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	return transactions, err
}
