package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func (r *Repository) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.GetContext(ctx, &promo, "SELECT * FROM promo_codes WHERE code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrUnknownPromo
		}
		return nil, err
	}
	return &promo, nil
}

// CreatePromoCode inserts or replaces a promo code (admin operation).
func (r *Repository) CreatePromoCode(ctx context.Context, code string, amount int64, uses int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO promo_codes (code, amount, remaining_uses)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET amount = $2, remaining_uses = $3`,
		code, amount, uses)
	return err
}

func (r *Repository) DeletePromoCode(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM promo_codes WHERE code = $1", code)
	return err
}

func (r *Repository) ListPromoCodes(ctx context.Context) ([]model.PromoCode, error) {
	var promos []model.PromoCode
	err := r.db.SelectContext(ctx, &promos, "SELECT * FROM promo_codes ORDER BY created_at DESC")
	return promos, err
}
