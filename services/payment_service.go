package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anjiri1684/tutor_marketplace/events"
	"github.com/anjiri1684/tutor_marketplace/idempotency"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentService struct {
	store  repositories.Store
	events events.Publisher
	guard  idempotency.Guard
}

func NewPaymentService(store repositories.Store, pub events.Publisher, guard idempotency.Guard) *PaymentService {
	return &PaymentService{store: store, events: pub, guard: guard}
}

type AuthorizePaymentInput struct {
	BookingID     uuid.UUID
	Amount        decimal.Decimal
	Method        models.PaymentMethod
	ProviderTxnID string
	Currency      string
}

func (s *PaymentService) AuthorizePayment(ctx context.Context, in AuthorizePaymentInput) (*models.Payment, error) {
	if _, err := s.store.Bookings().GetByID(ctx, in.BookingID); err != nil {
		return nil, err
	}
	p, err := models.AuthorizePayment(in.BookingID, in.Amount, in.Method, in.ProviderTxnID, in.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.store.Payments().Add(ctx, p); err != nil {
		return nil, err
	}
	publish(ctx, s.events, events.RKPaymentAuthorized, events.PaymentPayload(p))
	return p, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.store.Payments().GetByID(ctx, id)
}

func (s *PaymentService) GetPaymentByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	return s.store.Payments().GetByBookingID(ctx, bookingID)
}

func (s *PaymentService) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return s.store.Payments().GetByStatus(ctx, status)
}

// IsPaymentSuccessful reports whether the payment is Authorized or Captured.
func (s *PaymentService) IsPaymentSuccessful(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.store.Payments().GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.IsSuccessful(), nil
}

type paymentAction struct {
	apply func(*models.Payment) error
	event string
}

var paymentActions = map[string]paymentAction{
	"capture": {(*models.Payment).Capture, events.RKPaymentCaptured},
	"refund":  {(*models.Payment).Refund, events.RKPaymentRefunded},
	"fail":    {(*models.Payment).Fail, events.RKPaymentFailed},
}

func (s *PaymentService) Transition(ctx context.Context, id uuid.UUID, action string) (*models.Payment, error) {
	act, ok := paymentActions[action]
	if !ok {
		return nil, unknownAction("payment", action)
	}

	var out *models.Payment
	err := withRetry(ctx, "payment."+action, func() error {
		p, err := s.store.Payments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := act.apply(p); err != nil {
			return err
		}
		if err := s.store.Payments().Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, act.event, events.PaymentPayload(out))
	return out, nil
}

func (s *PaymentService) Capture(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.Transition(ctx, id, "capture")
}

func (s *PaymentService) Refund(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.Transition(ctx, id, "refund")
}

func (s *PaymentService) Fail(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.Transition(ctx, id, "fail")
}

var providerActions = map[string]string{
	events.RKProviderPaymentCaptured: "capture",
	events.RKProviderPaymentFailed:   "fail",
}

// HandleProviderEvent applies a provider callback to the payment it names.
// Redelivered callbacks and callbacks for transitions that already happened
// are acknowledged without changing anything.
func (s *PaymentService) HandleProviderEvent(ctx context.Context, routingKey string, body []byte) error {
	action, ok := providerActions[routingKey]
	if !ok {
		return nil
	}
	evt, err := events.DecodeProviderPayment(body)
	if err != nil {
		return err
	}

	key := evt.Data.EventID
	if key == "" {
		key = routingKey + ":" + evt.Data.ProviderTxnID
	}
	claimed, err := s.guard.Claim(ctx, key)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("[provider] duplicate %s for %s ignored", routingKey, evt.Data.ProviderTxnID)
		return nil
	}

	p, err := s.store.Payments().GetByProviderTxnID(ctx, evt.Data.ProviderTxnID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, events.ErrDiscard)
	}
	if err != nil {
		s.release(ctx, key)
		return err
	}

	_, err = s.Transition(ctx, p.ID, action)
	switch {
	case err == nil:
		return nil
	case models.IsIllegalTransition(err):
		log.Printf("[provider] %s for payment %s already settled: %v", routingKey, p.ID, err)
		return nil
	default:
		s.release(ctx, key)
		return err
	}
}

func (s *PaymentService) release(ctx context.Context, key string) {
	if err := s.guard.Release(ctx, key); err != nil {
		log.Printf("⚠️ Failed to release idempotency key %s: %v", key, err)
	}
}
