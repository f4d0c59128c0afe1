package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "Card"
	PaymentWallet PaymentMethod = "Wallet"
	PaymentBank   PaymentMethod = "Bank"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCard, PaymentWallet, PaymentBank:
		return m, nil
	}
	return "", NewValidationError("method", "must be one of Card, Wallet, Bank", ErrInvalidMethod)
}

type PaymentStatus string

const (
	PaymentAuthorized PaymentStatus = "Authorized"
	PaymentCaptured   PaymentStatus = "Captured"
	PaymentFailed     PaymentStatus = "Failed"
	PaymentRefunded   PaymentStatus = "Refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentAuthorized: {PaymentCaptured, PaymentFailed},
	PaymentCaptured:   {PaymentRefunded, PaymentFailed},
	PaymentFailed:     {},
	PaymentRefunded:   {},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.Valid() {
		return "", NewValidationError("status", "unknown payment status "+s, ErrInvalidStatus)
	}
	return status, nil
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	return canTransition(paymentTransitions, s, target)
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentFailed || s == PaymentRefunded
}

func (s *PaymentStatus) Scan(src any) error {
	v, err := scanStatus(src)
	if err != nil {
		return err
	}
	parsed, err := ParsePaymentStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

const DefaultCurrency = "USD"

type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BookingID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`
	Method        PaymentMethod   `gorm:"size:20;not null" json:"method"`
	ProviderTxnID string          `gorm:"size:255;index" json:"provider_txn_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Status        PaymentStatus   `gorm:"size:20;not null;default:'Authorized';index" json:"status"`
	Version       int64           `gorm:"not null" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NormalizeCurrency upper-cases code and checks it against ISO 4217.
// An empty code falls back to DefaultCurrency.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if len(code) != 3 {
		return "", NewValidationError("currency", "must be a 3-letter code", ErrInvalidCurrency)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", NewValidationError("currency", "unrecognized currency code "+code, ErrInvalidCurrency)
	}
	return unit.String(), nil
}

// AuthorizePayment records reserved funds for a booking.
func AuthorizePayment(bookingID uuid.UUID, amount decimal.Decimal, method PaymentMethod, providerTxnID, currencyCode string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError("amount", "must be greater than zero", ErrInvalidAmount)
	}
	if err := checkAmount("amount", amount); err != nil {
		return nil, err
	}
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}
	code, err := NormalizeCurrency(currencyCode)
	if err != nil {
		return nil, err
	}

	now := timestamp()
	return &Payment{
		ID:            uuid.New(),
		BookingID:     bookingID,
		Method:        method,
		ProviderTxnID: providerTxnID,
		Amount:        amount,
		Currency:      code,
		Status:        PaymentAuthorized,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (p *Payment) transitionTo(target PaymentStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return NewIllegalTransitionError("payment", string(p.Status), string(target))
	}
	p.Status = target
	p.UpdatedAt = timestamp()
	return nil
}

func (p *Payment) Capture() error { return p.transitionTo(PaymentCaptured) }
func (p *Payment) Refund() error  { return p.transitionTo(PaymentRefunded) }

// Fail records a provider-reported failure. Failed and Refunded payments
// cannot fail again.
func (p *Payment) Fail() error { return p.transitionTo(PaymentFailed) }

// IsSuccessful counts Authorized as success because the funds are reserved.
func (p *Payment) IsSuccessful() bool {
	return p.Status == PaymentAuthorized || p.Status == PaymentCaptured
}

func (p *Payment) IsCaptured() bool {
	return p.Status == PaymentCaptured
}

func (p *Payment) IsRefunded() bool {
	return p.Status == PaymentRefunded
}
