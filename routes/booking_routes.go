package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(api fiber.Router, h *handlers.BookingHandler) {
	booking := api.Group("/bookings")
	booking.Post("", h.CreateBooking)
	booking.Get("", h.ListBookings)
	booking.Get("/upcoming/:userId", h.GetUpcoming)
	booking.Get("/:bookingId", h.GetBooking)
	booking.Post("/:bookingId/actions", h.Transition)
	booking.Put("/:bookingId/schedule", h.Reschedule)
	booking.Delete("/:bookingId", middleware.AdminRequired(), h.DeleteBooking)
}
