package handler

import (
	"github.com/gofiber/fiber/v2"
)

type CreatePromoCodeRequest struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
	Uses   int    `json:"uses"`
}

func (h *Handler) ListPromoCodes(c *fiber.Ctx) error {
	promos, err := h.adminSvc.ListPromoCodes(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load promo codes",
		})
	}
	return c.JSON(fiber.Map{
		"promo_codes": promos,
	})
}

func (h *Handler) CreatePromoCode(c *fiber.Ctx) error {
	var req CreatePromoCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Code == "" || req.Amount <= 0 || req.Uses <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "code, amount and uses are required",
		})
	}

	if err := h.adminSvc.CreatePromoCode(c.Context(), req.Code, req.Amount, req.Uses); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create promo code",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

func (h *Handler) GetPromoCode(c *fiber.Ctx) error {
	promo, err := h.adminSvc.GetPromoCode(c.Context(), c.Params("code"))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(promo)
}

func (h *Handler) DeletePromoCode(c *fiber.Ctx) error {
	code := c.Params("code")
	if err := h.adminSvc.DeletePromoCode(c.Context(), code); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete promo code",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

type BonusChannelRequest struct {
	ChannelID string `json:"channel_id"`
	Bonus     int64  `json:"bonus"`
}

func (h *Handler) ListBonusChannels(c *fiber.Ctx) error {
	channels, err := h.adminSvc.ListBonusChannels(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load bonus channels",
		})
	}
	return c.JSON(fiber.Map{
		"channels": channels,
	})
}

func (h *Handler) UpsertBonusChannel(c *fiber.Ctx) error {
	var req BonusChannelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ChannelID == "" || req.Bonus <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "channel_id and a positive bonus are required",
		})
	}

	if err := h.adminSvc.UpsertBonusChannel(c.Context(), req.ChannelID, req.Bonus); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save bonus channel",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *Handler) DeleteBonusChannel(c *fiber.Ctx) error {
	if err := h.adminSvc.DeleteBonusChannel(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete bonus channel",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

type MandatoryChannelRequest struct {
	ChannelID string `json:"channel_id"`
}

func (h *Handler) ListMandatoryChannels(c *fiber.Ctx) error {
	channels, err := h.adminSvc.ListMandatoryChannels(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load mandatory channels",
		})
	}
	return c.JSON(fiber.Map{
		"channels": channels,
	})
}

func (h *Handler) AddMandatoryChannel(c *fiber.Ctx) error {
	var req MandatoryChannelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ChannelID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "channel_id is required",
		})
	}

	if err := h.adminSvc.AddMandatoryChannel(c.Context(), req.ChannelID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to add mandatory channel",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *Handler) DeleteMandatoryChannel(c *fiber.Ctx) error {
	if err := h.adminSvc.DeleteMandatoryChannel(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete mandatory channel",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}
