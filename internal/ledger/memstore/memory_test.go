package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/ledger/memstore"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func TestAtomically_DiscardsOnError(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := store.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Atomically(ctx, func(tx ledger.Tx) error {
		if _, err := tx.ApplyBalance(ctx, 1, 500, model.TransactionTypePromoCode, "X"); err != nil {
			return err
		}
		if err := tx.SetPendingDeposit(ctx, 1, 10000, "BASIC"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed transaction is visible.
	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Balance)
	assert.Equal(t, int64(0), u.PendingAmount)
	assert.Empty(t, store.Journal(1))
}

func TestAtomically_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := store.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	err = store.Atomically(ctx, func(tx ledger.Tx) error {
		_, err := tx.ApplyBalance(ctx, 1, 500, model.TransactionTypePromoCode, "X")
		return err
	})
	require.NoError(t, err)

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), u.Balance)

	journal := store.Journal(1)
	require.Len(t, journal, 1)
	assert.Equal(t, int64(0), journal[0].BalanceBefore)
	assert.Equal(t, int64(500), journal[0].BalanceAfter)
}

func TestApplyBalance_RejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := store.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	err = store.Atomically(ctx, func(tx ledger.Tx) error {
		_, err := tx.ApplyBalance(ctx, 1, -100, model.TransactionTypeWithdrawal, "1")
		return err
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestReturnedUserIsACopy(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	u, err := store.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)
	u.Balance = 999999

	stored, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Balance)
}

func TestGetUser_Unknown(t *testing.T) {
	store := memstore.New()
	_, err := store.GetUser(context.Background(), 404)
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}
