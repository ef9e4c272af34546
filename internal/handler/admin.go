package handler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetStats(c *fiber.Ctx) error {
	stats, err := h.adminSvc.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}
	return c.JSON(stats)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	user, err := h.engine.GetUser(c.Context(), int64(id))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) GetTransactions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	transactions, err := h.adminSvc.Transactions(c.Context(), int64(id), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load transactions",
		})
	}
	return c.JSON(fiber.Map{
		"transactions": transactions,
	})
}

func (h *Handler) ListPendingDeposits(c *fiber.Ctx) error {
	users, err := h.adminSvc.ListPendingDeposits(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load deposits",
		})
	}
	return c.JSON(fiber.Map{
		"deposits": users,
	})
}

func (h *Handler) ConfirmDeposit(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	result, err := h.engine.ConfirmDeposit(c.Context(), int64(userID))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(result)
}

func (h *Handler) ListPendingWithdrawals(c *fiber.Ctx) error {
	requests, err := h.adminSvc.ListPendingWithdrawals(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load withdrawals",
		})
	}
	return c.JSON(fiber.Map{
		"withdrawals": requests,
	})
}

func (h *Handler) GetUserWithdrawals(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	requests, err := h.adminSvc.ListUserWithdrawals(c.Context(), int64(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load withdrawals",
		})
	}
	return c.JSON(fiber.Map{
		"withdrawals": requests,
	})
}

func (h *Handler) GetWithdrawal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request id",
		})
	}

	request, err := h.adminSvc.GetWithdrawal(c.Context(), int64(id))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(request)
}

func (h *Handler) ApproveWithdrawal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request id",
		})
	}

	result, err := h.engine.ApproveWithdrawal(c.Context(), int64(id))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(result)
}
