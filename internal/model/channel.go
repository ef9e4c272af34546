package model

import (
	"time"
)

// BonusChannel is an external channel whose verified membership grants a
// one-time flat balance credit per user.
type BonusChannel struct {
	ChannelID string    `json:"channel_id" db:"channel_id"`
	Bonus     int64     `json:"bonus" db:"bonus"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BonusClaim records that a user claimed a channel bonus. A (user, channel)
// pair exists at most once.
type BonusClaim struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MandatoryChannel is a channel users must join before using the bot.
// Enforced by the presentation layer, not the ledger.
type MandatoryChannel struct {
	ChannelID string    `json:"channel_id" db:"channel_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
