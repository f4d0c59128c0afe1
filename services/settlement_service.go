package services

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/events"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementService coordinates changes that span a booking, its payment and
// its payouts. Every operation runs inside one store transaction.
type SettlementService struct {
	store         repositories.Store
	events        events.Publisher
	refundCascade bool
}

func NewSettlementService(store repositories.Store, pub events.Publisher, refundCascade bool) *SettlementService {
	return &SettlementService{store: store, events: pub, refundCascade: refundCascade}
}

type Settlement struct {
	Booking *models.Booking `json:"booking,omitempty"`
	Payment *models.Payment `json:"payment,omitempty"`
	Payouts []models.Payout `json:"payouts,omitempty"`
}

type outboundEvent struct {
	key  string
	data any
}

func (s *SettlementService) flush(ctx context.Context, pending []outboundEvent) {
	for _, e := range pending {
		publish(ctx, s.events, e.key, e.data)
	}
}

// CreatePayoutForBooking creates a Pending payout only when the booking's
// payment is Captured. The payment row stays locked until the payout exists.
func (s *SettlementService) CreatePayoutForBooking(ctx context.Context, tutorID, bookingID uuid.UUID, amount decimal.Decimal) (*models.Payout, error) {
	var payout *models.Payout
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		p, err := tx.Payments().GetByBookingIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !p.IsCaptured() {
			return ErrPaymentNotCaptured
		}
		po, err := models.NewPayout(tutorID, bookingID, amount)
		if err != nil {
			return err
		}
		if err := tx.Payouts().Add(ctx, po); err != nil {
			return err
		}
		payout = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, events.RKPayoutCreated, events.PayoutPayload(payout))
	return payout, nil
}

type ConfirmInput struct {
	Method        models.PaymentMethod
	ProviderTxnID string
	Currency      string
}

// ConfirmBooking confirms a Pending booking and authorizes a payment for its
// total amount.
func (s *SettlementService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, in ConfirmInput) (*Settlement, error) {
	var out Settlement
	err := withRetry(ctx, "settlement.confirm", func() error {
		return s.store.WithinTx(ctx, func(tx repositories.Store) error {
			b, err := tx.Bookings().GetByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if err := b.Confirm(); err != nil {
				return err
			}
			p, err := models.AuthorizePayment(b.ID, b.TotalAmount, in.Method, in.ProviderTxnID, in.Currency)
			if err != nil {
				return err
			}
			if err := tx.Bookings().Update(ctx, b); err != nil {
				return err
			}
			if err := tx.Payments().Add(ctx, p); err != nil {
				return err
			}
			out = Settlement{Booking: b, Payment: p}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, []outboundEvent{
		{events.RKBookingConfirmed, events.BookingPayload(out.Booking)},
		{events.RKPaymentAuthorized, events.PaymentPayload(out.Payment)},
	})
	return &out, nil
}

// CompleteBooking completes an InProgress booking and captures its payment.
// A payment the provider has already captured is left as is.
func (s *SettlementService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*Settlement, error) {
	var (
		out      Settlement
		captured bool
	)
	err := withRetry(ctx, "settlement.complete", func() error {
		return s.store.WithinTx(ctx, func(tx repositories.Store) error {
			b, err := tx.Bookings().GetByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if err := b.Complete(); err != nil {
				return err
			}
			p, err := tx.Payments().GetByBookingIDForUpdate(ctx, bookingID)
			if err != nil {
				return err
			}
			captured = false
			if !p.IsCaptured() {
				if err := p.Capture(); err != nil {
					return err
				}
				if err := tx.Payments().Update(ctx, p); err != nil {
					return err
				}
				captured = true
			}
			if err := tx.Bookings().Update(ctx, b); err != nil {
				return err
			}
			out = Settlement{Booking: b, Payment: p}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	pending := []outboundEvent{{events.RKBookingCompleted, events.BookingPayload(out.Booking)}}
	if captured {
		pending = append(pending, outboundEvent{events.RKPaymentCaptured, events.PaymentPayload(out.Payment)})
	}
	s.flush(ctx, pending)
	return &out, nil
}

// RefundBooking refunds the booking's captured payment. With the refund
// cascade enabled it also moves the booking to Refunded (or Canceled when it
// never ran) and fails every payout that has not been paid.
func (s *SettlementService) RefundBooking(ctx context.Context, bookingID uuid.UUID) (*Settlement, error) {
	var (
		out     Settlement
		pending []outboundEvent
	)
	err := withRetry(ctx, "settlement.refund", func() error {
		return s.store.WithinTx(ctx, func(tx repositories.Store) error {
			out, pending = Settlement{}, nil

			p, err := tx.Payments().GetByBookingIDForUpdate(ctx, bookingID)
			if err != nil {
				return err
			}
			if err := p.Refund(); err != nil {
				return err
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
			out.Payment = p
			pending = append(pending, outboundEvent{events.RKPaymentRefunded, events.PaymentPayload(p)})

			if !s.refundCascade {
				return nil
			}
			return s.cascadeRefund(ctx, tx, bookingID, &out, &pending)
		})
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, pending)
	return &out, nil
}

func (s *SettlementService) cascadeRefund(ctx context.Context, tx repositories.Store, bookingID uuid.UUID, out *Settlement, pending *[]outboundEvent) error {
	b, err := tx.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	var key string
	switch {
	case b.IsCompleted():
		err, key = b.Refund(), events.RKBookingRefunded
	case b.CanBeCanceled():
		err, key = b.Cancel(), events.RKBookingCanceled
	}
	if err != nil {
		return err
	}
	if key != "" {
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		*pending = append(*pending, outboundEvent{key, events.BookingPayload(b)})
	}
	out.Booking = b

	payouts, err := tx.Payouts().GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	for i := range payouts {
		po := &payouts[i]
		if !po.IsOutstanding() {
			continue
		}
		if err := po.Fail(); err != nil {
			return err
		}
		if err := tx.Payouts().Update(ctx, po); err != nil {
			return err
		}
		out.Payouts = append(out.Payouts, *po)
		*pending = append(*pending, outboundEvent{events.RKPayoutFailed, events.PayoutPayload(po)})
	}
	return nil
}
