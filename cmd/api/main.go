package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/anjiri1684/tutor_marketplace/database"
	"github.com/anjiri1684/tutor_marketplace/events"
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/idempotency"
	"github.com/anjiri1684/tutor_marketplace/jobs"
	"github.com/anjiri1684/tutor_marketplace/repositories"
	"github.com/anjiri1684/tutor_marketplace/routes"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}
	loc, err := time.LoadLocation(settings.AppTimezone)
	if err != nil {
		log.Fatalf("🔥 Invalid APP_TIMEZONE %q: %v", settings.AppTimezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(settings)

	publisher := openPublisher(settings)
	defer publisher.Close()

	guard := openGuard(ctx, settings)

	bookings := services.NewBookingService(store, publisher)
	payments := services.NewPaymentService(store, publisher, guard)
	payouts := services.NewPayoutService(store, publisher)
	settlements := services.NewSettlementService(store, publisher, settings.RefundCascade)

	scheduler, err := jobs.NewScheduler(loc,
		jobs.Job{Name: "expire-stale-bookings", Spec: settings.BookingExpiryCron, Run: jobs.ExpireStaleBookings(ctx, bookings, time.Now)},
		jobs.Job{Name: "report-pending-payouts", Spec: settings.PayoutReportCron, Run: jobs.ReportPendingPayouts(ctx, payouts)},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to schedule jobs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if settings.RabbitURL != "" {
		consumer, err := events.NewConsumer(settings.RabbitURL, settings.EventsExchange, settings.ProviderQueue,
			[]string{events.RKProviderPaymentCaptured, events.RKProviderPaymentFailed})
		if err != nil {
			log.Fatalf("🔥 Failed to start provider consumer: %v", err)
		}
		defer consumer.Close()

		deliveries, err := consumer.Deliveries(ctx)
		if err != nil {
			log.Fatalf("🔥 Failed to consume %s: %v", settings.ProviderQueue, err)
		}
		go events.Dispatch(ctx, deliveries, payments.HandleProviderEvent)
		log.Printf("✅ Consuming provider callbacks from %s", settings.ProviderQueue)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Tutor Marketplace",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		MaxAge:       86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   settings.AppTimezone,
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, settings.JWTSecret, routes.Handlers{
		Bookings:    handlers.NewBookingHandler(bookings),
		Payments:    handlers.NewPaymentHandler(payments),
		Payouts:     handlers.NewPayoutHandler(payouts, settlements),
		Settlements: handlers.NewSettlementHandler(settlements),
	})

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Server shutdown: %v", err)
		}
	}()

	log.Printf("✅ Server is running on %s", settings.HTTPAddr)
	if err := app.Listen(settings.HTTPAddr); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

func openStore(s config.Settings) repositories.Store {
	if s.StorageDriver == "memory" {
		log.Println("⚠️ Using in-memory storage; data is lost on restart")
		return repositories.NewMemoryStore()
	}

	db, err := database.ConnectDB(s.DatabaseURL)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	return repositories.NewGormStore(db)
}

func openPublisher(s config.Settings) events.Publisher {
	if s.RabbitURL == "" {
		log.Println("⚠️ RABBIT_URL not set, domain events are only logged")
		return events.LogPublisher{}
	}
	pub, err := events.NewAMQPPublisher(s.RabbitURL, s.EventsExchange)
	if err != nil {
		log.Fatalf("🔥 Failed to connect publisher: %v", err)
	}
	return pub
}

func openGuard(ctx context.Context, s config.Settings) idempotency.Guard {
	if s.RedisURL == "" {
		return idempotency.NewMemoryGuard(idempotency.DefaultTTL)
	}
	rdb, err := idempotency.NewRedisClient(ctx, s.RedisURL)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	return idempotency.NewRedisGuard(rdb, idempotency.DefaultTTL)
}
