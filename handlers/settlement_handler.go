package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

type SettlementHandler struct {
	settlements *services.SettlementService
}

func NewSettlementHandler(settlements *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

type ConfirmBookingRequest struct {
	Method        string `json:"method" validate:"required,oneof=Card Wallet Bank"`
	ProviderTxnID string `json:"provider_txn_id" validate:"omitempty,max=128"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
}

func (h *SettlementHandler) ConfirmBooking(c *fiber.Ctx) error {
	bookingID, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	var req ConfirmBookingRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	out, err := h.settlements.ConfirmBooking(c.UserContext(), bookingID, services.ConfirmInput{
		Method:        models.PaymentMethod(req.Method),
		ProviderTxnID: req.ProviderTxnID,
		Currency:      req.Currency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *SettlementHandler) CompleteBooking(c *fiber.Ctx) error {
	bookingID, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.settlements.CompleteBooking(c.UserContext(), bookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *SettlementHandler) RefundBooking(c *fiber.Ctx) error {
	bookingID, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.settlements.RefundBooking(c.UserContext(), bookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
