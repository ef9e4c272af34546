package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbbislomjon-svg/piramida/internal/config"
	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/ledger/memstore"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func testLedgerConfig() config.LedgerConfig {
	return config.LedgerConfig{
		Tariffs:           config.DefaultTariffs(),
		MinWithdrawal:     15000,
		FirstDepositBonus: 0,
	}
}

func newTestEngine(t *testing.T) (*ledger.Engine, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return ledger.NewEngine(store, testLedgerConfig()), store
}

func ref(id int64) *int64 {
	return &id
}

func mustUser(t *testing.T, e *ledger.Engine, id int64) *model.User {
	t.Helper()
	u, err := e.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func confirmFirstDeposit(t *testing.T, e *ledger.Engine, userID int64, tariff string) *ledger.DepositResult {
	t.Helper()
	ctx := context.Background()
	_, err := e.RequestDeposit(ctx, userID, tariff)
	require.NoError(t, err)
	result, err := e.ConfirmDeposit(ctx, userID)
	require.NoError(t, err)
	return result
}

func TestEnsureUser_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	u, err := e.EnsureUser(ctx, 1, ref(99))
	require.NoError(t, err)
	require.NotNil(t, u.ReferredBy)
	assert.Equal(t, int64(99), *u.ReferredBy)
	assert.Equal(t, model.StatusGuest, u.Status)
	assert.Equal(t, int64(0), u.Balance)

	// Second registration with a different referrer must not change anything.
	u, err = e.EnsureUser(ctx, 1, ref(77))
	require.NoError(t, err)
	require.NotNil(t, u.ReferredBy)
	assert.Equal(t, int64(99), *u.ReferredBy)
}

func TestEnsureUser_SelfReferralIgnored(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	u, err := e.EnsureUser(ctx, 5, ref(5))
	require.NoError(t, err)
	assert.Nil(t, u.ReferredBy)
}

func TestRequestDeposit(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	_, err = e.RequestDeposit(ctx, 1, "PLATINUM")
	assert.ErrorIs(t, err, ledger.ErrUnknownTariff)

	intent, err := e.RequestDeposit(ctx, 1, "BASIC")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), intent.Amount)

	u := mustUser(t, e, 1)
	assert.Equal(t, int64(10000), u.PendingAmount)
	require.NotNil(t, u.PendingTariff)
	assert.Equal(t, "BASIC", *u.PendingTariff)
	assert.Equal(t, int64(0), u.Balance)

	// A new intent replaces the previous one; at most one is active.
	_, err = e.RequestDeposit(ctx, 1, "PRO")
	require.NoError(t, err)
	u = mustUser(t, e, 1)
	assert.Equal(t, int64(20000), u.PendingAmount)
	assert.Equal(t, "PRO", *u.PendingTariff)
}

func TestRequestDeposit_UnknownUser(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.RequestDeposit(context.Background(), 404, "BASIC")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestConfirmDeposit_NoPending(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	_, err := e.ConfirmDeposit(ctx, 404)
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)

	_, err = e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)
	_, err = e.ConfirmDeposit(ctx, 1)
	assert.ErrorIs(t, err, ledger.ErrNoPendingDeposit)
}

func TestConfirmDeposit_FirstDepositWithReferral(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	_, err := e.EnsureUser(ctx, 100, nil)
	require.NoError(t, err)
	_, err = e.EnsureUser(ctx, 200, ref(100))
	require.NoError(t, err)

	result := confirmFirstDeposit(t, e, 200, "PRO")
	assert.Equal(t, int64(20000), result.Amount)
	assert.Equal(t, int64(20000), result.NewBalance)
	assert.True(t, result.FirstDeposit)
	require.NotNil(t, result.ReferrerID)
	assert.Equal(t, int64(100), *result.ReferrerID)
	assert.Equal(t, int64(2500), result.ReferralBonus)

	depositor := mustUser(t, e, 200)
	assert.Equal(t, int64(20000), depositor.Balance)
	assert.Equal(t, "PRO", depositor.Status)
	assert.True(t, depositor.FirstDepositComplete)
	assert.Equal(t, int64(0), depositor.PendingAmount)

	referrer := mustUser(t, e, 100)
	assert.Equal(t, int64(2500), referrer.Balance)
	assert.Equal(t, 1, referrer.ReferralCount)
}

func TestConfirmDeposit_ReferralCreditedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	_, err := e.EnsureUser(ctx, 100, nil)
	require.NoError(t, err)
	_, err = e.EnsureUser(ctx, 200, ref(100))
	require.NoError(t, err)

	confirmFirstDeposit(t, e, 200, "BASIC")

	// Second deposit: credited, but no referral credit and no promotion past
	// the first tariff.
	result := confirmFirstDeposit(t, e, 200, "ELITE")
	assert.False(t, result.FirstDeposit)
	assert.Nil(t, result.ReferrerID)

	depositor := mustUser(t, e, 200)
	assert.Equal(t, int64(10000+35000), depositor.Balance)
	assert.Equal(t, "BASIC", depositor.Status)

	referrer := mustUser(t, e, 100)
	assert.Equal(t, int64(1000), referrer.Balance)
	assert.Equal(t, 1, referrer.ReferralCount)
}

func TestConfirmDeposit_DanglingReferrer(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	// Anyone can craft a start payload pointing at an id that never
	// registered. The deposit must still confirm; only the bonus is skipped.
	_, err := e.EnsureUser(ctx, 200, ref(999))
	require.NoError(t, err)

	result := confirmFirstDeposit(t, e, 200, "PRO")
	assert.True(t, result.FirstDeposit)
	assert.Nil(t, result.ReferrerID)
	assert.Equal(t, int64(0), result.ReferralBonus)
	assert.Equal(t, int64(20000), result.NewBalance)

	depositor := mustUser(t, e, 200)
	assert.Equal(t, int64(20000), depositor.Balance)
	assert.Equal(t, "PRO", depositor.Status)
	assert.True(t, depositor.FirstDepositComplete)
	assert.Empty(t, store.Journal(999))
}

func TestConfirmDeposit_FirstDepositBonus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	cfg := testLedgerConfig()
	cfg.FirstDepositBonus = 3000
	e := ledger.NewEngine(store, cfg)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	result := confirmFirstDeposit(t, e, 1, "BASIC")
	assert.Equal(t, int64(3000), result.DepositBonus)
	assert.Equal(t, int64(13000), result.NewBalance)

	// The flat bonus is tied to the first-deposit flag, never repeated.
	result = confirmFirstDeposit(t, e, 1, "BASIC")
	assert.Equal(t, int64(0), result.DepositBonus)
	assert.Equal(t, int64(23000), result.NewBalance)
}

func TestConfirmDeposit_JournalEntries(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	_, err := e.EnsureUser(ctx, 100, nil)
	require.NoError(t, err)
	_, err = e.EnsureUser(ctx, 200, ref(100))
	require.NoError(t, err)

	confirmFirstDeposit(t, e, 200, "PRO")

	entries := store.Journal(200)
	require.Len(t, entries, 1)
	assert.Equal(t, model.TransactionTypeDeposit, entries[0].Type)
	assert.Equal(t, int64(20000), entries[0].Amount)
	assert.Equal(t, int64(0), entries[0].BalanceBefore)
	assert.Equal(t, int64(20000), entries[0].BalanceAfter)

	refEntries := store.Journal(100)
	require.Len(t, refEntries, 1)
	assert.Equal(t, model.TransactionTypeReferralBonus, refEntries[0].Type)
	assert.Equal(t, int64(2500), refEntries[0].Amount)
}

func TestRedeemPromo_Scenario(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddPromoCode("WELCOME5", 5000, 1)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)
	_, err = e.EnsureUser(ctx, 2, nil)
	require.NoError(t, err)

	result, err := e.RedeemPromo(ctx, 1, "WELCOME5")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Amount)
	assert.Equal(t, int64(5000), result.NewBalance)

	promo, ok := store.PromoCode("WELCOME5")
	require.True(t, ok)
	assert.Equal(t, 0, promo.RemainingUses)

	// Same user again: already used wins over exhausted.
	_, err = e.RedeemPromo(ctx, 1, "WELCOME5")
	assert.ErrorIs(t, err, ledger.ErrPromoAlreadyUsed)

	// Different user: the code is spent.
	_, err = e.RedeemPromo(ctx, 2, "WELCOME5")
	assert.ErrorIs(t, err, ledger.ErrPromoExhausted)

	assert.Equal(t, int64(5000), mustUser(t, e, 1).Balance)
	assert.Equal(t, int64(0), mustUser(t, e, 2).Balance)
}

func TestRedeemPromo_UnknownCode(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	_, err = e.RedeemPromo(ctx, 1, "NOPE")
	assert.ErrorIs(t, err, ledger.ErrUnknownPromo)
}

func TestRedeemPromo_FailedAttemptLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddPromoCode("ONCE", 1000, 1)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)
	_, err = e.EnsureUser(ctx, 2, nil)
	require.NoError(t, err)

	_, err = e.RedeemPromo(ctx, 1, "ONCE")
	require.NoError(t, err)

	_, err = e.RedeemPromo(ctx, 2, "ONCE")
	require.ErrorIs(t, err, ledger.ErrPromoExhausted)

	assert.Equal(t, int64(0), mustUser(t, e, 2).Balance)
	assert.Empty(t, store.Journal(2))
}

func TestRedeemPromo_ConcurrentDistinctUsers(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	const uses = 5
	const users = 20
	store.AddPromoCode("RACE", 1000, uses)

	for i := int64(1); i <= users; i++ {
		_, err := e.EnsureUser(ctx, i, nil)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.RedeemPromo(ctx, int64(i+1), "RACE")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ledger.ErrPromoExhausted)
		}
	}
	assert.Equal(t, uses, succeeded)

	promo, ok := store.PromoCode("RACE")
	require.True(t, ok)
	assert.Equal(t, 0, promo.RemainingUses)
}

func TestRedeemPromo_ConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddPromoCode("SOLO", 1000, 100)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.RedeemPromo(ctx, 1, "SOLO")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ledger.ErrPromoAlreadyUsed)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1000), mustUser(t, e, 1).Balance)
}

func TestClaimChannelBonus(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddBonusChannel("@news", 500)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	_, err = e.ClaimChannelBonus(ctx, 1, "@news", false)
	assert.ErrorIs(t, err, ledger.ErrNotSubscribed)

	_, err = e.ClaimChannelBonus(ctx, 1, "@missing", true)
	assert.ErrorIs(t, err, ledger.ErrUnknownChannel)

	result, err := e.ClaimChannelBonus(ctx, 1, "@news", true)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Bonus)
	assert.Equal(t, int64(500), result.NewBalance)

	// Claiming again must fail and leave the balance untouched.
	_, err = e.ClaimChannelBonus(ctx, 1, "@news", true)
	assert.ErrorIs(t, err, ledger.ErrBonusAlreadyClaimed)
	assert.Equal(t, int64(500), mustUser(t, e, 1).Balance)
}

func TestRequestWithdrawal(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddPromoCode("BIG", 15000, 10)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)

	_, err = e.RequestWithdrawal(ctx, 1, "4111 1111 John")
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	_, err = e.RedeemPromo(ctx, 1, "BIG")
	require.NoError(t, err)

	request, err := e.RequestWithdrawal(ctx, 1, "4111 1111 John")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), request.Amount)
	assert.Equal(t, model.WithdrawalStatusPending, request.Status)

	// The request only snapshots the balance; nothing is debited yet.
	assert.Equal(t, int64(15000), mustUser(t, e, 1).Balance)
}

func TestApproveWithdrawal(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddPromoCode("BIG", 20000, 10)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)
	_, err = e.RedeemPromo(ctx, 1, "BIG")
	require.NoError(t, err)

	request, err := e.RequestWithdrawal(ctx, 1, "card")
	require.NoError(t, err)

	result, err := e.ApproveWithdrawal(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.NewBalance)
	assert.Equal(t, model.WithdrawalStatusDone, result.Request.Status)

	_, err = e.ApproveWithdrawal(ctx, request.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)

	_, err = e.ApproveWithdrawal(ctx, 12345)
	assert.ErrorIs(t, err, ledger.ErrRequestNotFound)
}

func TestApproveWithdrawal_Concurrent(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddPromoCode("BIG", 20000, 10)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)
	_, err = e.RedeemPromo(ctx, 1, "BIG")
	require.NoError(t, err)

	request, err := e.RequestWithdrawal(ctx, 1, "card")
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.ApproveWithdrawal(ctx, request.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(0), mustUser(t, e, 1).Balance)
}

func TestApproveWithdrawal_BalanceDroppedSinceRequest(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	store.AddPromoCode("BIG", 15000, 10)

	_, err := e.EnsureUser(ctx, 1, nil)
	require.NoError(t, err)
	_, err = e.RedeemPromo(ctx, 1, "BIG")
	require.NoError(t, err)

	first, err := e.RequestWithdrawal(ctx, 1, "card A")
	require.NoError(t, err)
	second, err := e.RequestWithdrawal(ctx, 1, "card B")
	require.NoError(t, err)

	// Approving the second request drains the balance the first one
	// snapshotted.
	_, err = e.ApproveWithdrawal(ctx, second.ID)
	require.NoError(t, err)

	_, err = e.ApproveWithdrawal(ctx, first.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// The failed approval leaves the request pending and the balance
	// unchanged.
	stored, ok := store.Withdrawal(first.ID)
	require.True(t, ok)
	assert.Equal(t, model.WithdrawalStatusPending, stored.Status)
	assert.Equal(t, int64(0), mustUser(t, e, 1).Balance)
}
