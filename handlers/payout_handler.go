package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PayoutHandler struct {
	payouts     *services.PayoutService
	settlements *services.SettlementService
}

func NewPayoutHandler(payouts *services.PayoutService, settlements *services.SettlementService) *PayoutHandler {
	return &PayoutHandler{payouts: payouts, settlements: settlements}
}

type CreatePayoutRequest struct {
	TutorID   string `json:"tutor_id" validate:"required,uuid"`
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Amount    string `json:"amount" validate:"required,numeric"`
}

// CreatePayout only succeeds once the booking's payment has been captured.
func (h *PayoutHandler) CreatePayout(c *fiber.Ctx) error {
	var req CreatePayoutRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	payout, err := h.settlements.CreatePayoutForBooking(c.UserContext(),
		uuid.MustParse(req.TutorID), uuid.MustParse(req.BookingID), amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payout)
}

func (h *PayoutHandler) GetPayout(c *fiber.Ctx) error {
	id, err := uuidParam(c, "payoutId")
	if err != nil {
		return respondError(c, err)
	}
	payout, err := h.payouts.GetPayout(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payout)
}

func (h *PayoutHandler) listResponse(c *fiber.Ctx, payouts []models.Payout, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"payouts": payouts, "count": len(payouts)})
}

func (h *PayoutHandler) GetTutorPayouts(c *fiber.Ctx) error {
	tutorID, err := uuidParam(c, "tutorId")
	if err != nil {
		return respondError(c, err)
	}
	payouts, err := h.payouts.GetTutorPayouts(c.UserContext(), tutorID)
	return h.listResponse(c, payouts, err)
}

func (h *PayoutHandler) GetBookingPayouts(c *fiber.Ctx) error {
	bookingID, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	payouts, err := h.payouts.GetBookingPayouts(c.UserContext(), bookingID)
	return h.listResponse(c, payouts, err)
}

func (h *PayoutHandler) GetPayoutsByStatus(c *fiber.Ctx) error {
	status, err := models.ParsePayoutStatus(c.Params("status"))
	if err != nil {
		return respondError(c, err)
	}
	payouts, err := h.payouts.GetPayoutsByStatus(c.UserContext(), status)
	return h.listResponse(c, payouts, err)
}

func (h *PayoutHandler) GetPendingPayouts(c *fiber.Ctx) error {
	payouts, err := h.payouts.GetPendingPayouts(c.UserContext())
	return h.listResponse(c, payouts, err)
}

func (h *PayoutHandler) GetTutorEarnings(c *fiber.Ctx) error {
	tutorID, err := uuidParam(c, "tutorId")
	if err != nil {
		return respondError(c, err)
	}
	earnings, err := h.payouts.EarningsSummary(c.UserContext(), tutorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(earnings)
}

// Transition applies process, complete or fail.
func (h *PayoutHandler) Transition(c *fiber.Ctx) error {
	id, err := uuidParam(c, "payoutId")
	if err != nil {
		return respondError(c, err)
	}
	var req ActionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	payout, err := h.payouts.Transition(c.UserContext(), id, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payout)
}

func (h *PayoutHandler) CheckPayout(c *fiber.Ctx) error {
	id, err := uuidParam(c, "payoutId")
	if err != nil {
		return respondError(c, err)
	}
	paid, err := h.payouts.IsPayoutCompleted(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"payout_id": id, "completed": paid})
}
