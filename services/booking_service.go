package services

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/anjiri1684/tutor_marketplace/events"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingService struct {
	store  repositories.Store
	events events.Publisher
}

func NewBookingService(store repositories.Store, pub events.Publisher) *BookingService {
	return &BookingService{store: store, events: pub}
}

type CreateBookingInput struct {
	StudentID   uuid.UUID
	TutorID     uuid.UUID
	ServiceID   uuid.UUID
	SubjectID   uuid.UUID
	StartAt     time.Time
	EndAt       time.Time
	TotalAmount decimal.Decimal
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	b, err := models.NewBooking(in.StudentID, in.TutorID, in.ServiceID, in.SubjectID, in.StartAt, in.EndAt, in.TotalAmount)
	if err != nil {
		return nil, err
	}
	if err := s.store.Bookings().Add(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.store.Bookings().GetByID(ctx, id)
}

// BookingFilter narrows ListBookings. Zero fields are ignored; at least one
// must be set.
type BookingFilter struct {
	StudentID uuid.UUID
	TutorID   uuid.UUID
	Status    models.BookingStatus
	From      time.Time
	To        time.Time
}

func (f BookingFilter) matches(b models.Booking) bool {
	if f.StudentID != uuid.Nil && b.StudentID != f.StudentID {
		return false
	}
	if f.TutorID != uuid.Nil && b.TutorID != f.TutorID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && b.StartAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && b.EndAt.After(f.To) {
		return false
	}
	return true
}

func (s *BookingService) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	repo := s.store.Bookings()

	var (
		out []models.Booking
		err error
	)
	switch {
	case f.StudentID != uuid.Nil:
		out, err = repo.GetByStudentID(ctx, f.StudentID)
	case f.TutorID != uuid.Nil:
		out, err = repo.GetByTutorID(ctx, f.TutorID)
	case f.Status != "":
		out, err = repo.GetByStatus(ctx, f.Status)
	case !f.From.IsZero() && !f.To.IsZero():
		if !f.From.Before(f.To) {
			return nil, models.NewValidationError("from", "must be before to", models.ErrInvalidInterval)
		}
		out, err = repo.GetByDateRange(ctx, f.From, f.To)
	default:
		return nil, models.NewValidationError("filter", "one of student_id, tutor_id, status or from/to is required", models.ErrInvalidStatus)
	}
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(out, func(b models.Booking) bool { return !f.matches(b) }), nil
}

func (s *BookingService) GetUpcoming(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return s.store.Bookings().GetUpcomingBookings(ctx, userID)
}

type bookingAction struct {
	apply func(*models.Booking) error
	event string
}

var bookingActions = map[string]bookingAction{
	"confirm":  {(*models.Booking).Confirm, events.RKBookingConfirmed},
	"start":    {(*models.Booking).Start, events.RKBookingStarted},
	"complete": {(*models.Booking).Complete, events.RKBookingCompleted},
	"cancel":   {(*models.Booking).Cancel, events.RKBookingCanceled},
}

// Transition applies a named lifecycle action (confirm, start, complete or
// cancel) to the booking. Refunds move money and go through
// SettlementService.RefundBooking.
func (s *BookingService) Transition(ctx context.Context, id uuid.UUID, action string) (*models.Booking, error) {
	act, ok := bookingActions[action]
	if !ok {
		return nil, unknownAction("booking", action)
	}

	var out *models.Booking
	err := withRetry(ctx, "booking."+action, func() error {
		b, err := s.store.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := act.apply(b); err != nil {
			return err
		}
		if err := s.store.Bookings().Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, act.event, events.BookingPayload(out))
	return out, nil
}

func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.Transition(ctx, id, "confirm")
}

func (s *BookingService) Start(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.Transition(ctx, id, "start")
}

func (s *BookingService) Complete(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.Transition(ctx, id, "complete")
}

func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.Transition(ctx, id, "cancel")
}

func (s *BookingService) RescheduleBooking(ctx context.Context, id uuid.UUID, startAt, endAt time.Time) (*models.Booking, error) {
	var out *models.Booking
	err := withRetry(ctx, "booking.reschedule", func() error {
		b, err := s.store.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := b.Reschedule(startAt, endAt); err != nil {
			return err
		}
		if err := s.store.Bookings().Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

func (s *BookingService) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return s.store.Bookings().Delete(ctx, id)
}

// ExpireStaleBookings cancels Pending bookings whose start time is not after
// now. Bookings confirmed in the meantime are left alone.
func (s *BookingService) ExpireStaleBookings(ctx context.Context, now time.Time) (int, error) {
	pending, err := s.store.Bookings().GetByStatus(ctx, models.BookingPending)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range pending {
		if b.StartAt.After(now) {
			continue
		}
		if _, err := s.Cancel(ctx, b.ID); err != nil {
			if models.IsIllegalTransition(err) {
				continue
			}
			log.Printf("🔥 Failed to expire booking %s: %v", b.ID, err)
			return expired, err
		}
		expired++
	}
	return expired, nil
}
