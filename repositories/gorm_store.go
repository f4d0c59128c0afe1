package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormStore struct {
	db       *gorm.DB
	bookings *gormBookingRepository
	payments *gormPaymentRepository
	payouts  *gormPayoutRepository
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:       db,
		bookings: &gormBookingRepository{db: db},
		payments: &gormPaymentRepository{db: db},
		payouts:  &gormPayoutRepository{db: db},
	}
}

func (s *GormStore) Bookings() BookingRepository { return s.bookings }
func (s *GormStore) Payments() PaymentRepository { return s.payments }
func (s *GormStore) Payouts() PayoutRepository   { return s.payouts }

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

func translateError(op, entity string, id any, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %v: %w", entity, id, models.ErrDuplicate)
	default:
		return &models.PersistenceError{Op: op, Err: err}
	}
}

// casUpdate applies values to the row only if it still has the expected
// version. A miss is classified as not found or as a lost race.
func casUpdate(ctx context.Context, db *gorm.DB, model any, entity string, id uuid.UUID, version int64, values map[string]any) error {
	op := entity + ".update"
	values["version"] = version + 1

	res := db.WithContext(ctx).Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(values)
	if res.Error != nil {
		return translateError(op, entity, id, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(op, entity, id, err)
	}
	if count == 0 {
		return models.NotFound(entity, id)
	}
	return fmt.Errorf("%s %s at version %d: %w", entity, id, version, models.ErrConcurrencyConflict)
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, entity string, id uuid.UUID) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return translateError(entity+".delete", entity, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound(entity, id)
	}
	return nil
}
