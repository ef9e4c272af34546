package service

import (
	"context"

	"github.com/bbbislomjon-svg/piramida/internal/model"
	"github.com/bbbislomjon-svg/piramida/internal/repository"
)

// AdminService covers everything admins manage outside the ledger itself:
// the admin roster, the promo and channel catalogs, and reporting.
type AdminService struct {
	repo        *repository.Repository
	rootAdminID int64
}

func NewAdminService(repo *repository.Repository, rootAdminID int64) *AdminService {
	return &AdminService{repo: repo, rootAdminID: rootAdminID}
}

// HasAccess reports whether the user may use admin features. The configured
// root admin always has access.
func (s *AdminService) HasAccess(ctx context.Context, userID int64) (bool, error) {
	if userID == s.rootAdminID && userID != 0 {
		return true, nil
	}
	return s.repo.IsAdmin(ctx, userID)
}

// IsRoot reports whether the user is the configured root admin. Only the
// root admin may manage the roster.
func (s *AdminService) IsRoot(userID int64) bool {
	return userID == s.rootAdminID && userID != 0
}

func (s *AdminService) AddAdmin(ctx context.Context, userID, createdBy int64) error {
	return s.repo.AddAdmin(ctx, userID, createdBy)
}

func (s *AdminService) RemoveAdmin(ctx context.Context, userID int64) error {
	return s.repo.RemoveAdmin(ctx, userID)
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	return s.repo.ListAdmins(ctx)
}

func (s *AdminService) Stats(ctx context.Context) (*model.Stats, error) {
	return s.repo.GetStats(ctx)
}

func (s *AdminService) ListPendingDeposits(ctx context.Context) ([]model.User, error) {
	return s.repo.ListPendingDeposits(ctx)
}

func (s *AdminService) ListPendingWithdrawals(ctx context.Context) ([]model.WithdrawalRequest, error) {
	return s.repo.ListPendingWithdrawals(ctx)
}

func (s *AdminService) GetWithdrawal(ctx context.Context, id int64) (*model.WithdrawalRequest, error) {
	return s.repo.GetWithdrawal(ctx, id)
}

func (s *AdminService) ListUserWithdrawals(ctx context.Context, userID int64) ([]model.WithdrawalRequest, error) {
	return s.repo.ListUserWithdrawals(ctx, userID)
}

func (s *AdminService) CreatePromoCode(ctx context.Context, code string, amount int64, uses int) error {
	return s.repo.CreatePromoCode(ctx, code, amount, uses)
}

func (s *AdminService) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	return s.repo.GetPromoCode(ctx, code)
}

func (s *AdminService) DeletePromoCode(ctx context.Context, code string) error {
	return s.repo.DeletePromoCode(ctx, code)
}

func (s *AdminService) ListPromoCodes(ctx context.Context) ([]model.PromoCode, error) {
	return s.repo.ListPromoCodes(ctx)
}

func (s *AdminService) UpsertBonusChannel(ctx context.Context, channelID string, bonus int64) error {
	return s.repo.UpsertBonusChannel(ctx, channelID, bonus)
}

func (s *AdminService) DeleteBonusChannel(ctx context.Context, channelID string) error {
	return s.repo.DeleteBonusChannel(ctx, channelID)
}

func (s *AdminService) ListBonusChannels(ctx context.Context) ([]model.BonusChannel, error) {
	return s.repo.ListBonusChannels(ctx)
}

func (s *AdminService) AddMandatoryChannel(ctx context.Context, channelID string) error {
	return s.repo.AddMandatoryChannel(ctx, channelID)
}

func (s *AdminService) DeleteMandatoryChannel(ctx context.Context, channelID string) error {
	return s.repo.DeleteMandatoryChannel(ctx, channelID)
}

func (s *AdminService) ListMandatoryChannels(ctx context.Context) ([]string, error) {
	return s.repo.ListMandatoryChannels(ctx)
}

// Transactions returns a page of the user's balance journal.
func (s *AdminService) Transactions(ctx context.Context, userID int64, limit, offset int) ([]model.BalanceTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.GetBalanceTransactions(ctx, userID, limit, offset)
}

// BroadcastTargets returns every known user id for a broadcast run.
func (s *AdminService) BroadcastTargets(ctx context.Context) ([]int64, error) {
	return s.repo.ListUserIDs(ctx)
}
