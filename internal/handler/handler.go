package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bbbislomjon-svg/piramida/internal/config"
	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/middleware"
	"github.com/bbbislomjon-svg/piramida/internal/repository"
	"github.com/bbbislomjon-svg/piramida/internal/service"
)

// Handler is the operational HTTP surface: health plus the admin API the
// support team uses alongside the bot.
type Handler struct {
	cfg      *config.Config
	engine   *ledger.Engine
	adminSvc *service.AdminService
	repo     *repository.Repository
}

func New(cfg *config.Config, engine *ledger.Engine, adminSvc *service.AdminService, repo *repository.Repository) *Handler {
	return &Handler{
		cfg:      cfg,
		engine:   engine,
		adminSvc: adminSvc,
		repo:     repo,
	}
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)

	admin := app.Group("/api/admin", middleware.AdminAuth(h.cfg.Server.AdminToken))
	admin.Get("/stats", h.GetStats)
	admin.Get("/users/:id", h.GetUser)
	admin.Get("/users/:id/transactions", h.GetTransactions)
	admin.Get("/users/:id/withdrawals", h.GetUserWithdrawals)
	admin.Get("/deposits", h.ListPendingDeposits)
	admin.Post("/deposits/:user_id/confirm", h.ConfirmDeposit)
	admin.Get("/withdrawals", h.ListPendingWithdrawals)
	admin.Get("/withdrawals/:id", h.GetWithdrawal)
	admin.Post("/withdrawals/:id/approve", h.ApproveWithdrawal)
	admin.Get("/promos", h.ListPromoCodes)
	admin.Post("/promos", h.CreatePromoCode)
	admin.Get("/promos/:code", h.GetPromoCode)
	admin.Delete("/promos/:code", h.DeletePromoCode)
	admin.Get("/channels/bonus", h.ListBonusChannels)
	admin.Post("/channels/bonus", h.UpsertBonusChannel)
	admin.Delete("/channels/bonus/:id", h.DeleteBonusChannel)
	admin.Get("/channels/mandatory", h.ListMandatoryChannels)
	admin.Post("/channels/mandatory", h.AddMandatoryChannel)
	admin.Delete("/channels/mandatory/:id", h.DeleteMandatoryChannel)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.repo.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// statusForLedgerError maps engine outcomes to HTTP statuses: absent things
// are 404, duplicate processing is 409, failed preconditions are 422.
func statusForLedgerError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrUnknownPromo),
		errors.Is(err, ledger.ErrUnknownChannel),
		errors.Is(err, ledger.ErrRequestNotFound),
		errors.Is(err, ledger.ErrUnknownTariff):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrPromoAlreadyUsed),
		errors.Is(err, ledger.ErrBonusAlreadyClaimed),
		errors.Is(err, ledger.ErrAlreadyProcessed):
		return fiber.StatusConflict
	case errors.Is(err, ledger.ErrNoPendingDeposit),
		errors.Is(err, ledger.ErrPromoExhausted),
		errors.Is(err, ledger.ErrNotSubscribed),
		errors.Is(err, ledger.ErrInsufficientBalance):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func ledgerError(c *fiber.Ctx, err error) error {
	return c.Status(statusForLedgerError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
