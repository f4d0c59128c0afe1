package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Bookings    *handlers.BookingHandler
	Payments    *handlers.PaymentHandler
	Payouts     *handlers.PayoutHandler
	Settlements *handlers.SettlementHandler
}

func Setup(app *fiber.App, jwtSecret string, h Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1", middleware.Protected(jwtSecret))
	BookingRoutes(api, h.Bookings)
	PaymentRoutes(api, h.Payments)
	PayoutRoutes(api, h.Payouts)
	SettlementRoutes(api, h.Settlements)
}
