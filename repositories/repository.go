// Package repositories holds the persistence contract for bookings, payments
// and payouts together with a Postgres (gorm) and an in-memory implementation.
//
// Update is a compare-and-swap on the entity's Version: it succeeds only if the
// stored row still carries the version the caller read, bumps the version and
// returns models.ErrConcurrencyConflict otherwise. Repositories never retry.
package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
)

type BookingRepository interface {
	Add(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetByStudentID(ctx context.Context, studentID uuid.UUID) ([]models.Booking, error)
	GetByTutorID(ctx context.Context, tutorID uuid.UUID) ([]models.Booking, error)
	GetByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
	GetByDateRange(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	GetUpcomingBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PaymentRepository interface {
	Add(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error)
	// GetByBookingIDForUpdate locks the payment row until the enclosing
	// transaction ends. Outside WithinTx it behaves like GetByBookingID.
	GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error)
	GetByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	GetByProviderTxnID(ctx context.Context, providerTxnID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PayoutRepository interface {
	Add(ctx context.Context, payout *models.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	GetByTutorID(ctx context.Context, tutorID uuid.UUID) ([]models.Payout, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]models.Payout, error)
	GetByStatus(ctx context.Context, status models.PayoutStatus) ([]models.Payout, error)
	GetPendingPayouts(ctx context.Context) ([]models.Payout, error)
	Update(ctx context.Context, payout *models.Payout) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store groups the three repositories. WithinTx runs fn against a Store bound
// to a single transaction; if fn returns an error nothing it wrote is kept.
type Store interface {
	Bookings() BookingRepository
	Payments() PaymentRepository
	Payouts() PayoutRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

var upcomingStatuses = []models.BookingStatus{models.BookingPending, models.BookingConfirmed}
