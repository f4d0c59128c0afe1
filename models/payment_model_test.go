package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	p, err := AuthorizePayment(uuid.New(), decimal.RequireFromString("50.00"), PaymentCard, "txn_1", "USD")
	require.NoError(t, err)
	return p
}

func TestAuthorizePayment(t *testing.T) {
	p := newTestPayment(t)

	assert.Equal(t, PaymentAuthorized, p.Status)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, int64(1), p.Version)
	assert.True(t, p.IsSuccessful())
}

func TestAuthorizePayment_Validation(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		method   PaymentMethod
		currency string
		wantErr  error
	}{
		{"zero amount", "0", PaymentCard, "USD", ErrInvalidAmount},
		{"negative amount", "-5.00", PaymentCard, "USD", ErrInvalidAmount},
		{"sub-cent amount", "0.004", PaymentCard, "USD", ErrInvalidAmount},
		{"amount above column", "123456789.00", PaymentCard, "USD", ErrInvalidAmount},
		{"unknown method", "10", PaymentMethod("Cash"), "USD", ErrInvalidMethod},
		{"two letter currency", "10", PaymentCard, "US", ErrInvalidCurrency},
		{"unknown currency", "10", PaymentCard, "QQQ", ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AuthorizePayment(uuid.New(), decimal.RequireFromString(tt.amount), tt.method, "", tt.currency)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestAuthorizePayment_AmountBounds(t *testing.T) {
	p, err := AuthorizePayment(uuid.New(), decimal.RequireFromString("99999999.99"), PaymentCard, "", "USD")
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", p.Amount.StringFixed(2))

	p, err = AuthorizePayment(uuid.New(), decimal.RequireFromString("0.010"), PaymentCard, "", "USD")
	require.NoError(t, err, "trailing zeros fit the column")
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("0.01")))
	assert.Zero(t, p.CreatedAt.Nanosecond()%1000, "created_at keeps microseconds only")
}

func TestNormalizeCurrency(t *testing.T) {
	code, err := NormalizeCurrency("eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)

	code, err = NormalizeCurrency("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, code)
}

func TestPaymentCaptureTwice(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.Capture())
	assert.Equal(t, PaymentCaptured, p.Status)

	err := p.Capture()
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "Captured", illegal.From)
	assert.Equal(t, PaymentCaptured, p.Status)
}

func TestPaymentRefundScenario(t *testing.T) {
	p := newTestPayment(t)
	seen := []PaymentStatus{p.Status}

	require.NoError(t, p.Capture())
	seen = append(seen, p.Status)
	require.NoError(t, p.Refund())
	seen = append(seen, p.Status)

	assert.Equal(t, []PaymentStatus{PaymentAuthorized, PaymentCaptured, PaymentRefunded}, seen)
	assert.True(t, p.IsRefunded())
	assert.False(t, p.IsSuccessful())
	assert.True(t, IsIllegalTransition(p.Capture()))
}

func TestPaymentRefundRequiresCapture(t *testing.T) {
	p := newTestPayment(t)
	assert.True(t, IsIllegalTransition(p.Refund()))
	assert.Equal(t, PaymentAuthorized, p.Status)
}

func TestPaymentFail(t *testing.T) {
	tests := []struct {
		from    PaymentStatus
		wantErr bool
	}{
		{PaymentAuthorized, false},
		{PaymentCaptured, false},
		{PaymentFailed, true},
		{PaymentRefunded, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			p := newTestPayment(t)
			p.Status = tt.from

			err := p.Fail()
			if tt.wantErr {
				assert.True(t, IsIllegalTransition(err))
				assert.Equal(t, tt.from, p.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, PaymentFailed, p.Status)
		})
	}
}

func TestPaymentIsSuccessful(t *testing.T) {
	want := map[PaymentStatus]bool{
		PaymentAuthorized: true,
		PaymentCaptured:   true,
		PaymentFailed:     false,
		PaymentRefunded:   false,
	}
	for status, ok := range want {
		p := Payment{Status: status}
		assert.Equal(t, ok, p.IsSuccessful(), status)
	}
}
