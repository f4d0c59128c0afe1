package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func SettlementRoutes(api fiber.Router, h *handlers.SettlementHandler) {
	settlement := api.Group("/settlements/bookings/:bookingId")
	settlement.Post("/confirm", h.ConfirmBooking)
	settlement.Post("/complete", h.CompleteBooking)
	settlement.Post("/refund", h.RefundBooking)
}
