package repository

import (
	"context"

	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func (r *Repository) UpsertBonusChannel(ctx context.Context, channelID string, bonus int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bonus_channels (channel_id, bonus)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO UPDATE SET bonus = $2`, channelID, bonus)
	return err
}

func (r *Repository) DeleteBonusChannel(ctx context.Context, channelID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM bonus_channels WHERE channel_id = $1", channelID)
	return err
}

func (r *Repository) ListBonusChannels(ctx context.Context) ([]model.BonusChannel, error) {
	var channels []model.BonusChannel
	err := r.db.SelectContext(ctx, &channels, "SELECT * FROM bonus_channels ORDER BY channel_id")
	return channels, err
}

func (r *Repository) AddMandatoryChannel(ctx context.Context, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mandatory_channels (channel_id)
		VALUES ($1)
		ON CONFLICT (channel_id) DO NOTHING`, channelID)
	return err
}

func (r *Repository) DeleteMandatoryChannel(ctx context.Context, channelID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM mandatory_channels WHERE channel_id = $1", channelID)
	return err
}

func (r *Repository) ListMandatoryChannels(ctx context.Context) ([]string, error) {
	var channels []string
	err := r.db.SelectContext(ctx, &channels, "SELECT channel_id FROM mandatory_channels ORDER BY channel_id")
	return channels, err
}
