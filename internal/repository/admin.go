package repository

import (
	"context"

	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func (r *Repository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins WHERE user_id = $1", userID)
	return count > 0, err
}

func (r *Repository) AddAdmin(ctx context.Context, userID, createdBy int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (user_id, created_by)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, userID, createdBy)
	return err
}

func (r *Repository) RemoveAdmin(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM admins WHERE user_id = $1", userID)
	return err
}

func (r *Repository) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	err := r.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY created_at")
	return admins, err
}

func (r *Repository) GetStats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{}

	err := r.db.GetContext(ctx, &stats.UserCount, "SELECT COUNT(*) FROM users")
	if err != nil {
		return nil, err
	}
	err = r.db.GetContext(ctx, &stats.TotalBalance, "SELECT COALESCE(SUM(balance), 0) FROM users")
	if err != nil {
		return nil, err
	}
	err = r.db.GetContext(ctx, &stats.TotalPendingDeposit, "SELECT COALESCE(SUM(pending_amount), 0) FROM users")
	if err != nil {
		return nil, err
	}
	err = r.db.GetContext(ctx, &stats.PendingWithdrawals, "SELECT COUNT(*) FROM withdrawals WHERE status = 'pending'")
	if err != nil {
		return nil, err
	}

	return stats, nil
}
