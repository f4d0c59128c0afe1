package repositories

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormPaymentRepository struct{ db *gorm.DB }

func (r *gormPaymentRepository) Add(ctx context.Context, p *models.Payment) error {
	if p.Version == 0 {
		p.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return translateError("payment.add", "payment for booking", p.BookingID, err)
	}
	return nil
}

func (r *gormPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError("payment.get", "payment", id, err)
	}
	return &p, nil
}

func (r *gormPaymentRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "booking_id = ?", bookingID).Error; err != nil {
		return nil, translateError("payment.by_booking", "payment for booking", bookingID, err)
	}
	return &p, nil
}

func (r *gormPaymentRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "booking_id = ?", bookingID).Error
	if err != nil {
		return nil, translateError("payment.lock_by_booking", "payment for booking", bookingID, err)
	}
	return &p, nil
}

func (r *gormPaymentRepository) GetByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	var out []models.Payment
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, &models.PersistenceError{Op: "payment.by_status", Err: err}
	}
	return out, nil
}

func (r *gormPaymentRepository) GetByProviderTxnID(ctx context.Context, providerTxnID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "provider_txn_id = ?", providerTxnID).Error; err != nil {
		return nil, translateError("payment.by_provider_txn", "payment with provider txn", providerTxnID, err)
	}
	return &p, nil
}

func (r *gormPaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	err := casUpdate(ctx, r.db, &models.Payment{}, "payment", p.ID, p.Version, map[string]any{
		"method":          p.Method,
		"provider_txn_id": p.ProviderTxnID,
		"amount":          p.Amount,
		"currency":        p.Currency,
		"status":          p.Status,
		"updated_at":      p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

func (r *gormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Payment{}, "payment", id)
}
