package database

import (
	"fmt"
	"log"

	"github.com/anjiri1684/tutor_marketplace/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	log.Println("✅ Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Booking{},
		&models.Payment{},
		&models.Payout{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Println("✅ Database migration successful")
	return nil
}
