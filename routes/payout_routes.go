package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func PayoutRoutes(api fiber.Router, h *handlers.PayoutHandler) {
	payout := api.Group("/payouts")
	payout.Post("", h.CreatePayout)
	payout.Get("/pending", h.GetPendingPayouts)
	payout.Get("/status/:status", h.GetPayoutsByStatus)
	payout.Get("/tutor/:tutorId", h.GetTutorPayouts)
	payout.Get("/tutor/:tutorId/earnings", h.GetTutorEarnings)
	payout.Get("/booking/:bookingId", h.GetBookingPayouts)
	payout.Get("/:payoutId", h.GetPayout)
	payout.Get("/:payoutId/check", h.CheckPayout)
	payout.Post("/:payoutId/actions", middleware.AdminRequired(), h.Transition)
}
