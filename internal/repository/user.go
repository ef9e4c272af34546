package repository

import (
	"context"

	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func (r *Repository) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, "SELECT id FROM users ORDER BY id")
	return ids, err
}

// ListPendingDeposits returns every user with an unconfirmed deposit intent.
func (r *Repository) ListPendingDeposits(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users
		WHERE pending_amount > 0
		ORDER BY updated_at DESC`)
	return users, err
}
