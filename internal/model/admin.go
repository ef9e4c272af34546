package model

import (
	"time"
)

type Admin struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedBy int64     `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Stats is the aggregate snapshot shown in the admin panel.
type Stats struct {
	UserCount           int   `json:"user_count"`
	TotalBalance        int64 `json:"total_balance"`
	TotalPendingDeposit int64 `json:"total_pending_deposit"`
	PendingWithdrawals  int   `json:"pending_withdrawals"`
}
