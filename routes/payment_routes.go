package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(api fiber.Router, h *handlers.PaymentHandler) {
	payment := api.Group("/payments")
	payment.Post("", h.AuthorizePayment)
	payment.Get("/booking/:bookingId", h.GetPaymentByBooking)
	payment.Get("/status/:status", h.ListByStatus)
	payment.Get("/:paymentId", h.GetPayment)
	payment.Get("/:paymentId/check", h.CheckPayment)
	payment.Post("/:paymentId/actions", h.Transition)
}
