package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type AuthorizePaymentRequest struct {
	BookingID     string `json:"booking_id" validate:"required,uuid"`
	Amount        string `json:"amount" validate:"required,numeric"`
	Method        string `json:"method" validate:"required,oneof=Card Wallet Bank"`
	ProviderTxnID string `json:"provider_txn_id" validate:"omitempty,max=128"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
}

func (h *PaymentHandler) AuthorizePayment(c *fiber.Ctx) error {
	var req AuthorizePaymentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	payment, err := h.payments.AuthorizePayment(c.UserContext(), services.AuthorizePaymentInput{
		BookingID:     uuid.MustParse(req.BookingID),
		Amount:        amount,
		Method:        models.PaymentMethod(req.Method),
		ProviderTxnID: req.ProviderTxnID,
		Currency:      req.Currency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	id, err := uuidParam(c, "paymentId")
	if err != nil {
		return respondError(c, err)
	}
	payment, err := h.payments.GetPayment(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

func (h *PaymentHandler) GetPaymentByBooking(c *fiber.Ctx) error {
	bookingID, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	payment, err := h.payments.GetPaymentByBooking(c.UserContext(), bookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

func (h *PaymentHandler) ListByStatus(c *fiber.Ctx) error {
	status, err := models.ParsePaymentStatus(c.Params("status"))
	if err != nil {
		return respondError(c, err)
	}
	payments, err := h.payments.ListByStatus(c.UserContext(), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"payments": payments, "count": len(payments)})
}

// Transition applies capture, refund or fail.
func (h *PaymentHandler) Transition(c *fiber.Ctx) error {
	id, err := uuidParam(c, "paymentId")
	if err != nil {
		return respondError(c, err)
	}
	var req ActionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	payment, err := h.payments.Transition(c.UserContext(), id, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

func (h *PaymentHandler) CheckPayment(c *fiber.Ctx) error {
	id, err := uuidParam(c, "paymentId")
	if err != nil {
		return respondError(c, err)
	}
	ok, err := h.payments.IsPaymentSuccessful(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"payment_id": id, "successful": ok})
}
