package services

import (
	"context"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_marketplace/events"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SettlementSuite struct {
	suite.Suite
	ctx      context.Context
	store    *repositories.MemoryStore
	rec      *events.Recorder
	bookings *BookingService
	payouts  *PayoutService
}

func TestSettlementSuite(t *testing.T) {
	suite.Run(t, new(SettlementSuite))
}

func (s *SettlementSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, s.rec = newTestStore()
	s.bookings = NewBookingService(s.store, s.rec)
	s.payouts = NewPayoutService(s.store, s.rec)
}

func (s *SettlementSuite) settlement(cascade bool) *SettlementService {
	return NewSettlementService(s.store, s.rec, cascade)
}

func (s *SettlementSuite) newBooking() *models.Booking {
	b, err := s.bookings.CreateBooking(s.ctx, bookingInput(uuid.New(), uuid.New(), time.Now().Add(time.Hour)))
	s.Require().NoError(err)
	return b
}

// completedBooking drives a booking through confirm, start and complete so
// its payment ends up Captured.
func (s *SettlementSuite) completedBooking(svc *SettlementService) *models.Booking {
	b := s.newBooking()
	_, err := svc.ConfirmBooking(s.ctx, b.ID, ConfirmInput{Method: models.PaymentCard, ProviderTxnID: "txn_" + b.ID.String()})
	s.Require().NoError(err)
	_, err = s.bookings.Start(s.ctx, b.ID)
	s.Require().NoError(err)
	_, err = svc.CompleteBooking(s.ctx, b.ID)
	s.Require().NoError(err)
	return b
}

func (s *SettlementSuite) TestConfirmBookingAuthorizesTotal() {
	svc := s.settlement(false)
	b := s.newBooking()

	out, err := svc.ConfirmBooking(s.ctx, b.ID, ConfirmInput{Method: models.PaymentWallet, Currency: "eur"})
	s.Require().NoError(err)
	s.Equal(models.BookingConfirmed, out.Booking.Status)
	s.Equal(models.PaymentAuthorized, out.Payment.Status)
	s.True(b.TotalAmount.Equal(out.Payment.Amount))
	s.Equal("EUR", out.Payment.Currency)
	s.Equal([]string{events.RKBookingConfirmed, events.RKPaymentAuthorized}, s.rec.Keys())
}

func (s *SettlementSuite) TestConfirmBookingRollsBackOnInvalidPayment() {
	svc := s.settlement(false)
	b := s.newBooking()

	_, err := svc.ConfirmBooking(s.ctx, b.ID, ConfirmInput{Method: models.PaymentCard, Currency: "QQQ"})
	s.ErrorIs(err, models.ErrInvalidCurrency)

	got, _ := s.store.Bookings().GetByID(s.ctx, b.ID)
	s.Equal(models.BookingPending, got.Status)
	_, err = s.store.Payments().GetByBookingID(s.ctx, b.ID)
	s.ErrorIs(err, models.ErrNotFound)
	s.Empty(s.rec.Keys())
}

func (s *SettlementSuite) TestCompleteBookingCapturesPayment() {
	svc := s.settlement(false)
	b := s.completedBooking(svc)

	p, err := s.store.Payments().GetByBookingID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentCaptured, p.Status)
	s.Contains(s.rec.Keys(), events.RKPaymentCaptured)
}

func (s *SettlementSuite) TestCompleteBookingRequiresInProgress() {
	svc := s.settlement(false)
	b := s.newBooking()
	_, err := svc.ConfirmBooking(s.ctx, b.ID, ConfirmInput{Method: models.PaymentCard})
	s.Require().NoError(err)

	_, err = svc.CompleteBooking(s.ctx, b.ID)
	s.True(models.IsIllegalTransition(err))

	p, _ := s.store.Payments().GetByBookingID(s.ctx, b.ID)
	s.Equal(models.PaymentAuthorized, p.Status)
}

func (s *SettlementSuite) TestPayoutRequiresCapturedPayment() {
	svc := s.settlement(false)
	b := s.newBooking()

	_, err := svc.CreatePayoutForBooking(s.ctx, b.TutorID, b.ID, decimal.NewFromInt(40))
	s.ErrorIs(err, models.ErrNotFound)

	_, err = svc.ConfirmBooking(s.ctx, b.ID, ConfirmInput{Method: models.PaymentCard})
	s.Require().NoError(err)

	_, err = svc.CreatePayoutForBooking(s.ctx, b.TutorID, b.ID, decimal.NewFromInt(40))
	s.ErrorIs(err, ErrPaymentNotCaptured)
	s.True(models.IsValidation(err))

	payouts, _ := s.store.Payouts().GetByBookingID(s.ctx, b.ID)
	s.Empty(payouts)
}

func (s *SettlementSuite) TestPayoutAfterCapture() {
	svc := s.settlement(false)
	b := s.completedBooking(svc)

	po, err := svc.CreatePayoutForBooking(s.ctx, b.TutorID, b.ID, decimal.RequireFromString("40.00"))
	s.Require().NoError(err)
	s.Equal(models.PayoutPending, po.Status)

	pending, err := s.payouts.CalculatePendingEarnings(s.ctx, b.TutorID)
	s.Require().NoError(err)
	s.Equal("40", pending.String())
}

func (s *SettlementSuite) TestRefundWithoutCascade() {
	svc := s.settlement(false)
	b := s.completedBooking(svc)
	po, err := svc.CreatePayoutForBooking(s.ctx, b.TutorID, b.ID, decimal.NewFromInt(40))
	s.Require().NoError(err)

	out, err := svc.RefundBooking(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentRefunded, out.Payment.Status)
	s.Nil(out.Booking)

	got, _ := s.store.Bookings().GetByID(s.ctx, b.ID)
	s.Equal(models.BookingCompleted, got.Status)
	stored, _ := s.store.Payouts().GetByID(s.ctx, po.ID)
	s.Equal(models.PayoutPending, stored.Status)
}

func (s *SettlementSuite) TestRefundCascade() {
	svc := s.settlement(true)
	b := s.completedBooking(svc)

	open, err := svc.CreatePayoutForBooking(s.ctx, b.TutorID, b.ID, decimal.NewFromInt(40))
	s.Require().NoError(err)
	paid, err := svc.CreatePayoutForBooking(s.ctx, b.TutorID, b.ID, decimal.NewFromInt(5))
	s.Require().NoError(err)
	_, err = s.payouts.Complete(s.ctx, paid.ID)
	s.Require().NoError(err)

	out, err := svc.RefundBooking(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(models.BookingRefunded, out.Booking.Status)
	s.Require().Len(out.Payouts, 1)
	s.Equal(open.ID, out.Payouts[0].ID)

	stillPaid, _ := s.store.Payouts().GetByID(s.ctx, paid.ID)
	s.Equal(models.PayoutPaid, stillPaid.Status)
	failed, _ := s.store.Payouts().GetByID(s.ctx, open.ID)
	s.Equal(models.PayoutFailed, failed.Status)

	s.Subset(s.rec.Keys(), []string{events.RKPaymentRefunded, events.RKBookingRefunded, events.RKPayoutFailed})
}

func (s *SettlementSuite) TestRefundRequiresCapture() {
	svc := s.settlement(true)
	b := s.newBooking()
	_, err := svc.ConfirmBooking(s.ctx, b.ID, ConfirmInput{Method: models.PaymentBank})
	s.Require().NoError(err)

	_, err = svc.RefundBooking(s.ctx, b.ID)
	s.True(models.IsIllegalTransition(err))

	got, _ := s.store.Bookings().GetByID(s.ctx, b.ID)
	s.Equal(models.BookingConfirmed, got.Status)
}
