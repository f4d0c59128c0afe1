package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "Pending"
	BookingConfirmed  BookingStatus = "Confirmed"
	BookingInProgress BookingStatus = "InProgress"
	BookingCompleted  BookingStatus = "Completed"
	BookingCanceled   BookingStatus = "Canceled"
	BookingRefunded   BookingStatus = "Refunded"
)

// Completed -> Refunded is only reachable through Refund.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCanceled},
	BookingConfirmed:  {BookingInProgress, BookingCanceled},
	BookingInProgress: {BookingCompleted},
	BookingCompleted:  {BookingRefunded},
	BookingCanceled:   {},
	BookingRefunded:   {},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.Valid() {
		return "", NewValidationError("status", "unknown booking status "+s, ErrInvalidStatus)
	}
	return status, nil
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return canTransition(bookingTransitions, s, target)
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCanceled || s == BookingRefunded
}

func (s *BookingStatus) Scan(src any) error {
	v, err := scanStatus(src)
	if err != nil {
		return err
	}
	parsed, err := ParseBookingStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BookingStatus) Value() (driver.Value, error) {
	return string(s), nil
}

type Booking struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	StudentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	TutorID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"tutor_id"`
	ServiceID   uuid.UUID       `gorm:"type:uuid;not null" json:"service_id"`
	SubjectID   uuid.UUID       `gorm:"type:uuid;not null" json:"subject_id"`
	StartAt     time.Time       `gorm:"not null;index" json:"start_at"`
	EndAt       time.Time       `gorm:"not null" json:"end_at"`
	Hours       decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"hours"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status      BookingStatus   `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	Version     int64           `gorm:"not null" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func NewBooking(studentID, tutorID, serviceID, subjectID uuid.UUID, startAt, endAt time.Time, totalAmount decimal.Decimal) (*Booking, error) {
	if !startAt.Before(endAt) {
		return nil, NewValidationError("end_at", "start_at must be before end_at", ErrInvalidInterval)
	}
	if totalAmount.IsNegative() {
		return nil, NewValidationError("total_amount", "must not be negative", ErrInvalidAmount)
	}
	if err := checkAmount("total_amount", totalAmount); err != nil {
		return nil, err
	}
	hours, err := checkedHours(startAt, endAt)
	if err != nil {
		return nil, err
	}

	now := timestamp()
	return &Booking{
		ID:          uuid.New(),
		StudentID:   studentID,
		TutorID:     tutorID,
		ServiceID:   serviceID,
		SubjectID:   subjectID,
		StartAt:     startAt,
		EndAt:       endAt,
		Hours:       hours,
		TotalAmount: totalAmount,
		Status:      BookingPending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func durationHours(startAt, endAt time.Time) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(endAt.Sub(startAt) / time.Second))
	return seconds.Div(decimal.NewFromInt(3600)).Round(amountScale)
}

func checkedHours(startAt, endAt time.Time) (decimal.Decimal, error) {
	hours := durationHours(startAt, endAt)
	if hours.GreaterThan(MaxHours) {
		return decimal.Zero, NewValidationError("end_at", "session must not exceed "+MaxHours.String()+" hours", ErrInvalidInterval)
	}
	return hours, nil
}

func (b *Booking) DurationHours() decimal.Decimal {
	return durationHours(b.StartAt, b.EndAt)
}

func (b *Booking) TransitionTo(target BookingStatus) error {
	if !b.Status.CanTransitionTo(target) {
		return NewIllegalTransitionError("booking", string(b.Status), string(target))
	}
	b.Status = target
	b.UpdatedAt = timestamp()
	return nil
}

func (b *Booking) Confirm() error  { return b.TransitionTo(BookingConfirmed) }
func (b *Booking) Start() error    { return b.TransitionTo(BookingInProgress) }
func (b *Booking) Complete() error { return b.TransitionTo(BookingCompleted) }
func (b *Booking) Cancel() error   { return b.TransitionTo(BookingCanceled) }
func (b *Booking) Refund() error   { return b.TransitionTo(BookingRefunded) }

func (b *Booking) CanBeCanceled() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

func (b *Booking) IsCompleted() bool {
	return b.Status == BookingCompleted
}

// Reschedule moves the session while it has not started yet.
func (b *Booking) Reschedule(startAt, endAt time.Time) error {
	if !b.CanBeCanceled() {
		return NewValidationError("status", "only pending or confirmed bookings can be rescheduled", ErrInvalidStatus)
	}
	if !startAt.Before(endAt) {
		return NewValidationError("end_at", "start_at must be before end_at", ErrInvalidInterval)
	}
	hours, err := checkedHours(startAt, endAt)
	if err != nil {
		return err
	}
	b.StartAt = startAt
	b.EndAt = endAt
	b.Hours = hours
	b.UpdatedAt = timestamp()
	return nil
}
