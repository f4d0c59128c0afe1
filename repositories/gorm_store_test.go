package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(gormDB), mock
}

var paymentColumns = []string{
	"id", "booking_id", "method", "provider_txn_id", "amount", "currency",
	"status", "version", "created_at", "updated_at",
}

func paymentRow(rows *sqlmock.Rows, id, bookingID uuid.UUID, status string, version int64, ts time.Time) *sqlmock.Rows {
	return rows.AddRow(id.String(), bookingID.String(), "Card", "txn_42", "50.00", "USD", status, version, ts, ts)
}

func TestGormStore_PaymentGetByID(t *testing.T) {
	store, mock := newMockStore(t)
	id, bookingID := uuid.New(), uuid.New()
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments" WHERE id = $1`)).
		WillReturnRows(paymentRow(sqlmock.NewRows(paymentColumns), id, bookingID, "Captured", 3, ts))

	p, err := store.Payments().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, bookingID, p.BookingID)
	assert.Equal(t, models.PaymentCaptured, p.Status)
	assert.True(t, decimal.RequireFromString("50").Equal(p.Amount))
	assert.Equal(t, int64(3), p.Version)
	assert.Equal(t, ts, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_PaymentGetByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(paymentColumns))

	_, err := store.Payments().GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_PaymentGetByIDDatabaseError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := store.Payments().GetByID(context.Background(), uuid.New())
	var perr *models.PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestGormStore_PaymentUpdateSwapsVersion(t *testing.T) {
	store, mock := newMockStore(t)
	p, err := models.AuthorizePayment(uuid.New(), decimal.NewFromInt(50), models.PaymentCard, "txn_42", "USD")
	require.NoError(t, err)
	require.NoError(t, p.Capture())

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Payments().Update(context.Background(), p))
	assert.Equal(t, int64(2), p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_PaymentUpdateConflict(t *testing.T) {
	store, mock := newMockStore(t)
	p, _ := models.AuthorizePayment(uuid.New(), decimal.NewFromInt(50), models.PaymentCard, "", "USD")

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payments" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := store.Payments().Update(context.Background(), p)
	assert.ErrorIs(t, err, models.ErrConcurrencyConflict)
	assert.Equal(t, int64(1), p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_PayoutUpdateMissingRow(t *testing.T) {
	store, mock := newMockStore(t)
	p, _ := models.NewPayout(uuid.New(), uuid.New(), decimal.NewFromInt(40))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payouts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payouts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := store.Payouts().Update(context.Background(), p)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_BookingsByTutor(t *testing.T) {
	store, mock := newMockStore(t)
	tutor := uuid.New()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "tutor_id", "service_id", "subject_id", "start_at", "end_at",
		"hours", "total_amount", "status", "version", "created_at", "updated_at",
	}).
		AddRow(uuid.NewString(), uuid.NewString(), tutor.String(), uuid.NewString(), uuid.NewString(),
			start, start.Add(90*time.Minute), "1.50", "60.00", "Confirmed", 2, start, start).
		AddRow(uuid.NewString(), uuid.NewString(), tutor.String(), uuid.NewString(), uuid.NewString(),
			start.Add(24*time.Hour), start.Add(25*time.Hour), "1.00", "40.00", "Pending", 1, start, start)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings" WHERE tutor_id = $1 ORDER BY start_at ASC`)).
		WithArgs(tutor.String()).
		WillReturnRows(rows)

	out, err := store.Bookings().GetByTutorID(context.Background(), tutor)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, models.BookingConfirmed, out[0].Status)
	assert.True(t, decimal.RequireFromString("1.5").Equal(out[0].Hours))
	assert.Equal(t, models.BookingPending, out[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_WithinTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	bookingID := uuid.New()
	ts := time.Now().UTC()
	notCaptured := errors.New("payment not captured")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE booking_id = \$1 .*FOR UPDATE`).
		WillReturnRows(paymentRow(sqlmock.NewRows(paymentColumns), uuid.New(), bookingID, "Authorized", 1, ts))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Store) error {
		p, err := tx.Payments().GetByBookingIDForUpdate(context.Background(), bookingID)
		if err != nil {
			return err
		}
		if !p.IsCaptured() {
			return notCaptured
		}
		return nil
	})
	assert.ErrorIs(t, err, notCaptured)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteMissingBooking(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "bookings" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Bookings().Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
