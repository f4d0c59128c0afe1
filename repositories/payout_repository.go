package repositories

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormPayoutRepository struct{ db *gorm.DB }

func (r *gormPayoutRepository) Add(ctx context.Context, p *models.Payout) error {
	if p.Version == 0 {
		p.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return translateError("payout.add", "payout", p.ID, err)
	}
	return nil
}

func (r *gormPayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError("payout.get", "payout", id, err)
	}
	return &p, nil
}

func (r *gormPayoutRepository) find(ctx context.Context, op string, query any, args ...any) ([]models.Payout, error) {
	var out []models.Payout
	if err := r.db.WithContext(ctx).Where(query, args...).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, &models.PersistenceError{Op: op, Err: err}
	}
	return out, nil
}

func (r *gormPayoutRepository) GetByTutorID(ctx context.Context, tutorID uuid.UUID) ([]models.Payout, error) {
	return r.find(ctx, "payout.by_tutor", "tutor_id = ?", tutorID)
}

func (r *gormPayoutRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]models.Payout, error) {
	return r.find(ctx, "payout.by_booking", "booking_id = ?", bookingID)
}

func (r *gormPayoutRepository) GetByStatus(ctx context.Context, status models.PayoutStatus) ([]models.Payout, error) {
	return r.find(ctx, "payout.by_status", "status = ?", status)
}

func (r *gormPayoutRepository) GetPendingPayouts(ctx context.Context) ([]models.Payout, error) {
	return r.GetByStatus(ctx, models.PayoutPending)
}

func (r *gormPayoutRepository) Update(ctx context.Context, p *models.Payout) error {
	err := casUpdate(ctx, r.db, &models.Payout{}, "payout", p.ID, p.Version, map[string]any{
		"amount":     p.Amount,
		"status":     p.Status,
		"updated_at": p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

func (r *gormPayoutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Payout{}, "payout", id)
}
