package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var loadEnvOnce sync.Once

func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
}

// Config returns a single variable after loading .env.
func Config(key string) string {
	loadEnv()
	return os.Getenv(key)
}

type Settings struct {
	// Storage
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	// HTTP
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	// Messaging
	RabbitURL      string `envconfig:"RABBIT_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"marketplace.events"`
	ProviderQueue  string `envconfig:"PROVIDER_QUEUE" default:"marketplace.provider-callbacks"`
	RedisURL       string `envconfig:"REDIS_URL"`
	// Behaviour
	RefundCascade     bool   `envconfig:"REFUND_CASCADE" default:"false"`
	BookingExpiryCron string `envconfig:"BOOKING_EXPIRY_CRON" default:"*/5 * * * *"`
	PayoutReportCron  string `envconfig:"PAYOUT_REPORT_CRON" default:"0 6 * * *"`
	AppTimezone       string `envconfig:"APP_TIMEZONE" default:"UTC"`
}

func Load() (Settings, error) {
	loadEnv()
	var s Settings
	err := envconfig.Process("", &s)
	return s, err
}
