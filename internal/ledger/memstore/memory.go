// Package memstore is an in-memory ledger.Store. A single mutex serializes
// transactions; the callback runs against a deep copy of the state that
// replaces the live state only on success, so a failed operation leaves no
// partial writes. Used by the engine tests and as a throwaway backend.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

type pairKey struct {
	userID int64
	key    string
}

type state struct {
	users            map[int64]*model.User
	promos           map[string]*model.PromoCode
	promoUses        map[pairKey]model.PromoUse
	channels         map[string]*model.BonusChannel
	bonusClaims      map[pairKey]model.BonusClaim
	withdrawals      map[int64]*model.WithdrawalRequest
	journal          []model.BalanceTransaction
	nextWithdrawalID int64
}

type Store struct {
	mu sync.Mutex
	s  *state
}

func New() *Store {
	return &Store{s: &state{
		users:            make(map[int64]*model.User),
		promos:           make(map[string]*model.PromoCode),
		promoUses:        make(map[pairKey]model.PromoUse),
		channels:         make(map[string]*model.BonusChannel),
		bonusClaims:      make(map[pairKey]model.BonusClaim),
		withdrawals:      make(map[int64]*model.WithdrawalRequest),
		nextWithdrawalID: 1,
	}}
}

var _ ledger.Store = (*Store)(nil)

func (st *state) clone() *state {
	c := &state{
		users:            make(map[int64]*model.User, len(st.users)),
		promos:           make(map[string]*model.PromoCode, len(st.promos)),
		promoUses:        make(map[pairKey]model.PromoUse, len(st.promoUses)),
		channels:         make(map[string]*model.BonusChannel, len(st.channels)),
		bonusClaims:      make(map[pairKey]model.BonusClaim, len(st.bonusClaims)),
		withdrawals:      make(map[int64]*model.WithdrawalRequest, len(st.withdrawals)),
		journal:          append([]model.BalanceTransaction(nil), st.journal...),
		nextWithdrawalID: st.nextWithdrawalID,
	}
	for id, u := range st.users {
		c.users[id] = copyUser(u)
	}
	for code, p := range st.promos {
		cp := *p
		c.promos[code] = &cp
	}
	for k, v := range st.promoUses {
		c.promoUses[k] = v
	}
	for id, ch := range st.channels {
		cc := *ch
		c.channels[id] = &cc
	}
	for k, v := range st.bonusClaims {
		c.bonusClaims[k] = v
	}
	for id, w := range st.withdrawals {
		c.withdrawals[id] = copyWithdrawal(w)
	}
	return c
}

func copyUser(u *model.User) *model.User {
	c := *u
	if u.ReferredBy != nil {
		ref := *u.ReferredBy
		c.ReferredBy = &ref
	}
	if u.PendingTariff != nil {
		t := *u.PendingTariff
		c.PendingTariff = &t
	}
	return &c
}

func copyWithdrawal(w *model.WithdrawalRequest) *model.WithdrawalRequest {
	c := *w
	if w.CompletedAt != nil {
		at := *w.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

func (s *Store) EnsureUser(ctx context.Context, userID int64, referredBy *int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.s.users[userID]; ok {
		return copyUser(u), nil
	}

	now := time.Now()
	u := &model.User{
		ID:        userID,
		Status:    model.StatusGuest,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if referredBy != nil {
		ref := *referredBy
		u.ReferredBy = &ref
	}
	s.s.users[userID] = u
	return copyUser(u), nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.s.users[userID]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *Store) Atomically(ctx context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.s.clone()
	if err := fn(&memTx{s: draft}); err != nil {
		return err
	}
	s.s = draft
	return nil
}

// Seeding and inspection helpers for callers that own the store directly.

func (s *Store) AddPromoCode(code string, amount int64, uses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.promos[code] = &model.PromoCode{Code: code, Amount: amount, RemainingUses: uses, CreatedAt: time.Now()}
}

func (s *Store) AddBonusChannel(channelID string, bonus int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.channels[channelID] = &model.BonusChannel{ChannelID: channelID, Bonus: bonus, CreatedAt: time.Now()}
}

func (s *Store) Journal(userID int64) []model.BalanceTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []model.BalanceTransaction
	for _, e := range s.s.journal {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries
}

func (s *Store) PromoCode(code string) (*model.PromoCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.s.promos[code]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (s *Store) Withdrawal(requestID int64) (*model.WithdrawalRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.s.withdrawals[requestID]
	if !ok {
		return nil, false
	}
	return copyWithdrawal(w), true
}

type memTx struct {
	s *state
}

var _ ledger.Tx = (*memTx)(nil)

func (t *memTx) User(ctx context.Context, userID int64) (*model.User, error) {
	u, ok := t.s.users[userID]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (t *memTx) ApplyBalance(ctx context.Context, userID int64, delta int64, txType model.TransactionType, reference string) (int64, error) {
	u, ok := t.s.users[userID]
	if !ok {
		return 0, ledger.ErrUserNotFound
	}
	before := u.Balance
	after := before + delta
	if after < 0 {
		return 0, ledger.ErrInsufficientBalance
	}
	u.Balance = after
	u.UpdatedAt = time.Now()

	entry := model.BalanceTransaction{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        delta,
		Type:          txType,
		BalanceBefore: before,
		BalanceAfter:  after,
		CreatedAt:     time.Now(),
	}
	if reference != "" {
		ref := reference
		entry.Reference = &ref
	}
	t.s.journal = append(t.s.journal, entry)
	return after, nil
}

func (t *memTx) SetPendingDeposit(ctx context.Context, userID int64, amount int64, tariff string) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ledger.ErrUserNotFound
	}
	u.PendingAmount = amount
	u.PendingTariff = &tariff
	u.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) ClearPendingDeposit(ctx context.Context, userID int64) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ledger.ErrUserNotFound
	}
	u.PendingAmount = 0
	u.PendingTariff = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) MarkFirstDeposit(ctx context.Context, userID int64, status string) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ledger.ErrUserNotFound
	}
	u.FirstDepositComplete = true
	u.Status = status
	u.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) IncrementReferralCount(ctx context.Context, userID int64) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ledger.ErrUserNotFound
	}
	u.ReferralCount++
	u.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) PromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	p, ok := t.s.promos[code]
	if !ok {
		return nil, ledger.ErrUnknownPromo
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) ConsumePromoUse(ctx context.Context, code string) (bool, error) {
	p, ok := t.s.promos[code]
	if !ok {
		return false, ledger.ErrUnknownPromo
	}
	if p.RemainingUses <= 0 {
		return false, nil
	}
	p.RemainingUses--
	return true, nil
}

func (t *memTx) PromoUsed(ctx context.Context, userID int64, code string) (bool, error) {
	_, used := t.s.promoUses[pairKey{userID, code}]
	return used, nil
}

func (t *memTx) RecordPromoUse(ctx context.Context, userID int64, code string) error {
	k := pairKey{userID, code}
	if _, exists := t.s.promoUses[k]; exists {
		return ledger.ErrPromoAlreadyUsed
	}
	t.s.promoUses[k] = model.PromoUse{UserID: userID, Code: code, CreatedAt: time.Now()}
	return nil
}

func (t *memTx) BonusChannel(ctx context.Context, channelID string) (*model.BonusChannel, error) {
	ch, ok := t.s.channels[channelID]
	if !ok {
		return nil, ledger.ErrUnknownChannel
	}
	cc := *ch
	return &cc, nil
}

func (t *memTx) BonusClaimed(ctx context.Context, userID int64, channelID string) (bool, error) {
	_, claimed := t.s.bonusClaims[pairKey{userID, channelID}]
	return claimed, nil
}

func (t *memTx) RecordBonusClaim(ctx context.Context, userID int64, channelID string) error {
	k := pairKey{userID, channelID}
	if _, exists := t.s.bonusClaims[k]; exists {
		return ledger.ErrBonusAlreadyClaimed
	}
	t.s.bonusClaims[k] = model.BonusClaim{UserID: userID, ChannelID: channelID, CreatedAt: time.Now()}
	return nil
}

func (t *memTx) CreateWithdrawal(ctx context.Context, userID int64, amount int64, destination string) (int64, error) {
	id := t.s.nextWithdrawalID
	t.s.nextWithdrawalID++
	t.s.withdrawals[id] = &model.WithdrawalRequest{
		ID:          id,
		UserID:      userID,
		Amount:      amount,
		Destination: destination,
		Status:      model.WithdrawalStatusPending,
		CreatedAt:   time.Now(),
	}
	return id, nil
}

func (t *memTx) Withdrawal(ctx context.Context, requestID int64) (*model.WithdrawalRequest, error) {
	w, ok := t.s.withdrawals[requestID]
	if !ok {
		return nil, ledger.ErrRequestNotFound
	}
	return copyWithdrawal(w), nil
}

func (t *memTx) MarkWithdrawalDone(ctx context.Context, requestID int64) error {
	w, ok := t.s.withdrawals[requestID]
	if !ok {
		return ledger.ErrRequestNotFound
	}
	if w.Status != model.WithdrawalStatusPending {
		return ledger.ErrAlreadyProcessed
	}
	now := time.Now()
	w.Status = model.WithdrawalStatusDone
	w.CompletedAt = &now
	return nil
}
