package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "Pending"
	PayoutProcessing PayoutStatus = "Processing"
	PayoutPaid       PayoutStatus = "Paid"
	PayoutFailed     PayoutStatus = "Failed"
)

// Failed is reachable from every status, see Payout.Fail.
var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutPending:    {PayoutProcessing, PayoutPaid},
	PayoutProcessing: {PayoutPaid},
	PayoutPaid:       {},
	PayoutFailed:     {},
}

func ParsePayoutStatus(s string) (PayoutStatus, error) {
	status := PayoutStatus(s)
	if !status.Valid() {
		return "", NewValidationError("status", "unknown payout status "+s, ErrInvalidStatus)
	}
	return status, nil
}

func (s PayoutStatus) Valid() bool {
	_, ok := payoutTransitions[s]
	return ok
}

func (s PayoutStatus) CanTransitionTo(target PayoutStatus) bool {
	if target == PayoutFailed {
		return s.Valid()
	}
	return canTransition(payoutTransitions, s, target)
}

func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutPaid || s == PayoutFailed
}

func (s *PayoutStatus) Scan(src any) error {
	v, err := scanStatus(src)
	if err != nil {
		return err
	}
	parsed, err := ParsePayoutStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PayoutStatus) Value() (driver.Value, error) {
	return string(s), nil
}

type Payout struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TutorID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tutor_id"`
	BookingID uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status    PayoutStatus    `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	Version   int64           `gorm:"not null" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func NewPayout(tutorID, bookingID uuid.UUID, amount decimal.Decimal) (*Payout, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError("amount", "must be greater than zero", ErrInvalidAmount)
	}
	if err := checkAmount("amount", amount); err != nil {
		return nil, err
	}

	now := timestamp()
	return &Payout{
		ID:        uuid.New(),
		TutorID:   tutorID,
		BookingID: bookingID,
		Amount:    amount,
		Status:    PayoutPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Payout) transitionTo(target PayoutStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return NewIllegalTransitionError("payout", string(p.Status), string(target))
	}
	p.Status = target
	p.UpdatedAt = timestamp()
	return nil
}

func (p *Payout) Process() error { return p.transitionTo(PayoutProcessing) }

// Complete may skip Processing and pay a Pending payout directly.
func (p *Payout) Complete() error { return p.transitionTo(PayoutPaid) }

// Fail records an out-of-band disbursement failure and is legal from any status.
func (p *Payout) Fail() error { return p.transitionTo(PayoutFailed) }

func (p *Payout) IsPending() bool { return p.Status == PayoutPending }
func (p *Payout) IsPaid() bool    { return p.Status == PayoutPaid }
func (p *Payout) IsFailed() bool  { return p.Status == PayoutFailed }

// IsOutstanding reports whether the payout still counts towards pending earnings.
func (p *Payout) IsOutstanding() bool {
	return p.Status == PayoutPending || p.Status == PayoutProcessing
}
