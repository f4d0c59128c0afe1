package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormBookingRepository struct{ db *gorm.DB }

func (r *gormBookingRepository) Add(ctx context.Context, b *models.Booking) error {
	if b.Version == 0 {
		b.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return translateError("booking.add", "booking", b.ID, err)
	}
	return nil
}

func (r *gormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translateError("booking.get", "booking", id, err)
	}
	return &b, nil
}

func (r *gormBookingRepository) find(ctx context.Context, op string, query any, args ...any) ([]models.Booking, error) {
	var out []models.Booking
	if err := r.db.WithContext(ctx).Where(query, args...).Order("start_at ASC").Find(&out).Error; err != nil {
		return nil, &models.PersistenceError{Op: op, Err: err}
	}
	return out, nil
}

func (r *gormBookingRepository) GetByStudentID(ctx context.Context, studentID uuid.UUID) ([]models.Booking, error) {
	return r.find(ctx, "booking.by_student", "student_id = ?", studentID)
}

func (r *gormBookingRepository) GetByTutorID(ctx context.Context, tutorID uuid.UUID) ([]models.Booking, error) {
	return r.find(ctx, "booking.by_tutor", "tutor_id = ?", tutorID)
}

func (r *gormBookingRepository) GetByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	return r.find(ctx, "booking.by_status", "status = ?", status)
}

func (r *gormBookingRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	return r.find(ctx, "booking.by_date_range", "start_at >= ? AND end_at <= ?", from, to)
}

func (r *gormBookingRepository) GetUpcomingBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return r.find(ctx, "booking.upcoming",
		"(student_id = ? OR tutor_id = ?) AND start_at > ? AND status IN ?",
		userID, userID, time.Now().UTC(), upcomingStatuses)
}

func (r *gormBookingRepository) Update(ctx context.Context, b *models.Booking) error {
	err := casUpdate(ctx, r.db, &models.Booking{}, "booking", b.ID, b.Version, map[string]any{
		"start_at":     b.StartAt,
		"end_at":       b.EndAt,
		"hours":        b.Hours,
		"total_amount": b.TotalAmount,
		"status":       b.Status,
		"updated_at":   b.UpdatedAt,
	})
	if err != nil {
		return err
	}
	b.Version++
	return nil
}

func (r *gormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Booking{}, "booking", id)
}
