package services

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/events"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutService reads and advances payouts. New payouts come from
// SettlementService.CreatePayoutForBooking, which requires a captured payment.
type PayoutService struct {
	store  repositories.Store
	events events.Publisher
}

func NewPayoutService(store repositories.Store, pub events.Publisher) *PayoutService {
	return &PayoutService{store: store, events: pub}
}

func (s *PayoutService) GetPayout(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return s.store.Payouts().GetByID(ctx, id)
}

func (s *PayoutService) GetTutorPayouts(ctx context.Context, tutorID uuid.UUID) ([]models.Payout, error) {
	return s.store.Payouts().GetByTutorID(ctx, tutorID)
}

func (s *PayoutService) GetBookingPayouts(ctx context.Context, bookingID uuid.UUID) ([]models.Payout, error) {
	return s.store.Payouts().GetByBookingID(ctx, bookingID)
}

func (s *PayoutService) GetPendingPayouts(ctx context.Context) ([]models.Payout, error) {
	return s.store.Payouts().GetPendingPayouts(ctx)
}

func (s *PayoutService) GetPayoutsByStatus(ctx context.Context, status models.PayoutStatus) ([]models.Payout, error) {
	return s.store.Payouts().GetByStatus(ctx, status)
}

func (s *PayoutService) IsPayoutCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.store.Payouts().GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.IsPaid(), nil
}

type payoutAction struct {
	apply func(*models.Payout) error
	event string
}

var payoutActions = map[string]payoutAction{
	"process":  {(*models.Payout).Process, events.RKPayoutProcessing},
	"complete": {(*models.Payout).Complete, events.RKPayoutPaid},
	"fail":     {(*models.Payout).Fail, events.RKPayoutFailed},
}

func (s *PayoutService) Transition(ctx context.Context, id uuid.UUID, action string) (*models.Payout, error) {
	act, ok := payoutActions[action]
	if !ok {
		return nil, unknownAction("payout", action)
	}

	var out *models.Payout
	err := withRetry(ctx, "payout."+action, func() error {
		p, err := s.store.Payouts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := act.apply(p); err != nil {
			return err
		}
		if err := s.store.Payouts().Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, act.event, events.PayoutPayload(out))
	return out, nil
}

func (s *PayoutService) Process(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return s.Transition(ctx, id, "process")
}

func (s *PayoutService) Complete(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return s.Transition(ctx, id, "complete")
}

func (s *PayoutService) Fail(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return s.Transition(ctx, id, "fail")
}

// CalculateTutorEarnings sums the tutor's Paid payouts.
func (s *PayoutService) CalculateTutorEarnings(ctx context.Context, tutorID uuid.UUID) (decimal.Decimal, error) {
	e, err := s.EarningsSummary(ctx, tutorID)
	if err != nil {
		return decimal.Zero, err
	}
	return e.TotalEarnings, nil
}

// CalculatePendingEarnings sums the tutor's Pending and Processing payouts.
func (s *PayoutService) CalculatePendingEarnings(ctx context.Context, tutorID uuid.UUID) (decimal.Decimal, error) {
	e, err := s.EarningsSummary(ctx, tutorID)
	if err != nil {
		return decimal.Zero, err
	}
	return e.PendingEarnings, nil
}

type Earnings struct {
	TutorID          uuid.UUID       `json:"tutor_id"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	PendingEarnings  decimal.Decimal `json:"pending_earnings"`
	CompletedPayouts int             `json:"completed_payouts"`
	PendingPayouts   int             `json:"pending_payouts"`
}

func (s *PayoutService) EarningsSummary(ctx context.Context, tutorID uuid.UUID) (*Earnings, error) {
	payouts, err := s.store.Payouts().GetByTutorID(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	e := &Earnings{TutorID: tutorID, TotalEarnings: decimal.Zero, PendingEarnings: decimal.Zero}
	for _, p := range payouts {
		switch {
		case p.IsPaid():
			e.TotalEarnings = e.TotalEarnings.Add(p.Amount)
			e.CompletedPayouts++
		case p.IsOutstanding():
			e.PendingEarnings = e.PendingEarnings.Add(p.Amount)
			e.PendingPayouts++
		}
	}
	return e, nil
}
