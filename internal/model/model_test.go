package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserHasPendingDeposit(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasPendingDeposit())

	u.PendingAmount = 10000
	assert.True(t, u.HasPendingDeposit())
}

func TestPromoCodeExhausted(t *testing.T) {
	p := &PromoCode{RemainingUses: 1}
	assert.False(t, p.Exhausted())

	p.RemainingUses = 0
	assert.True(t, p.Exhausted())
}

func TestWithdrawalRequestPending(t *testing.T) {
	w := &WithdrawalRequest{Status: WithdrawalStatusPending}
	assert.True(t, w.Pending())

	w.Status = WithdrawalStatusDone
	assert.False(t, w.Pending())
}
